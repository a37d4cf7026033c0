package domain

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// computeStateHash folds the header, pages, actions and audio into a 64-bit
// FNV-1a checksum. The edit history and source file are not part of the
// state.
func computeStateHash(r *Recording) uint64 {
	h := fnv.New64a()
	w := hashWriter{h: h}

	w.bytes(r.header.ID[:])
	w.int(r.header.Created.UnixMilli())
	w.int(r.header.Duration)

	w.int(int64(len(r.pages)))
	for _, p := range r.pages {
		w.int(int64(len(p.shapes)))
		for _, s := range p.shapes {
			w.int(int64(s.Handle))
			w.int(int64(s.Kind))
			w.brush(s.Brush)
			w.points(s.Points)
			w.str(s.Text)
		}
	}

	w.int(int64(len(r.actions)))
	for _, a := range r.actions {
		w.int(int64(a.Type))
		w.int(a.Timestamp)
		w.int(int64(a.Page))
		w.int(int64(a.Handle))
		w.brush(a.Brush)
		w.points(a.Points)
		w.str(a.Text)
		w.str(a.Font.Family)
		w.float(a.Font.Size)
		w.bool(a.Font.Bold)
		w.bool(a.Font.Italic)
	}

	w.int(int64(r.audio.Format.SampleRate))
	w.int(int64(r.audio.Format.Channels))
	w.int(int64(r.audio.Format.BitsPerSample))
	w.int(int64(len(r.audio.Data)))
	w.bytes(r.audio.Data)

	return h.Sum64()
}

type hashWriter struct {
	h   hash.Hash64
	buf [8]byte
}

func (w *hashWriter) int(v int64) {
	binary.BigEndian.PutUint64(w.buf[:], uint64(v))
	w.h.Write(w.buf[:])
}

func (w *hashWriter) float(v float64) {
	binary.BigEndian.PutUint64(w.buf[:], math.Float64bits(v))
	w.h.Write(w.buf[:])
}

func (w *hashWriter) bool(v bool) {
	if v {
		w.int(1)
	} else {
		w.int(0)
	}
}

func (w *hashWriter) str(s string) {
	w.int(int64(len(s)))
	w.h.Write([]byte(s))
}

func (w *hashWriter) bytes(b []byte) {
	w.h.Write(b)
}

func (w *hashWriter) brush(b Brush) {
	w.int(int64(b.Color))
	w.float(b.Width)
}

func (w *hashWriter) points(ps []Point) {
	w.int(int64(len(ps)))
	for _, p := range ps {
		w.float(p.X)
		w.float(p.Y)
	}
}
