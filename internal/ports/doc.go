// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [RecordingStore]: reads and atomically writes recording files
//   - [SourceWatcher]: reports external changes to an open recording's file
//   - [RecentRepository]: persists the list of recently opened recordings
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with the file
// system, fsnotify and SQLite.
package ports
