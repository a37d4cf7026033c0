package recfile

import "github.com/bft-labs/lectrec/internal/domain"

// File format constants.
const (
	Magic = "LREC"

	// FormatVersion is the version written by Encode.
	FormatVersion uint32 = 3

	// MinCompatibleVersion is the oldest version Decode accepts.
	MinCompatibleVersion uint32 = 1

	// HeaderSize is the length of the fixed file header in bytes.
	HeaderSize = 56
)

// Version history:
//
//	1: initial layout
//	2: audio block carries its PCM format
//	3: TextFontChange carries a style byte
const (
	versionAudioFormat uint32 = 2
	versionFontStyle   uint32 = 3
)

// LegacyAudioFormat is assumed for version 1 files, which store bare PCM.
var LegacyAudioFormat = domain.AudioFormat{SampleRate: 44100, Channels: 1, BitsPerSample: 16}

const (
	styleBold   = 1 << 0
	styleItalic = 1 << 1
)

// Fixed sizes of the action record fields preceding the payload:
// type, timestamp, page, handle.
const actionPrefixSize = 1 + 8 + 4 + 4

// ProgressFunc receives the fraction of work done, in [0, 1]. Calls are
// monotonically non-decreasing and the last call reports exactly 1.
type ProgressFunc func(fraction float64)

// progress enforces the ProgressFunc contract.
type progress struct {
	fn      ProgressFunc
	last    float64
	started bool
}

func (p *progress) report(f float64) {
	if p.fn == nil {
		return
	}
	f = min(max(f, p.last), 1)
	if p.started && f == p.last {
		return
	}
	p.started = true
	p.last = f
	p.fn(f)
}

func (p *progress) done() {
	if p.fn != nil && (!p.started || p.last != 1) {
		p.started = true
		p.last = 1
		p.fn(1)
	}
}
