// Package recfile reads and writes the binary recording container.
//
// A file starts with a fixed 56-byte header followed by the document, events
// and audio blocks. All integers are big-endian.
//
//	offset size field
//	0      4    magic "LREC"
//	4      4    format version
//	8      16   recording id
//	24     8    creation time, unix milliseconds
//	32     8    duration, milliseconds
//	40     4    CRC-32 (IEEE) over the three blocks
//	44     4    document block length
//	48     4    events block length
//	52     4    audio block length
//
// The document block holds the pages and their shapes. The events block
// holds the playback actions, each prefixed with its length. The audio block
// is empty or carries the PCM format followed by the samples.
//
// Files written by this package use FormatVersion. Files from
// MinCompatibleVersion onwards can be read; anything else fails with a
// *domain.IncompatibleFileFormatError.
package recfile
