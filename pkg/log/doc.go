// Package log defines the structured logging interface used across lectrec.
//
// Services take a Logger and never a concrete logging library. The zerolog
// adapter is used by the command line tool; NoopLogger is the library
// default and is convenient in tests.
//
//	logger, err := log.NewZerologAdapter(os.Stderr, "debug")
//	if err != nil {
//		return err
//	}
//	logger.Info("recording opened", log.String("path", path), log.Int64("duration_ms", d))
package log
