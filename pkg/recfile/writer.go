package recfile

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/bft-labs/lectrec/internal/domain"
)

// chunkSize is the unit in which the body is written and progress reported.
const chunkSize = 64 << 10

// Encode writes rec to w in the current format. The recording is only read.
// progress may be nil.
func Encode(w io.Writer, rec *domain.Recording, progress ProgressFunc) error {
	return encode(w, rec, FormatVersion, progress)
}

func encode(w io.Writer, rec *domain.Recording, version uint32, fn ProgressFunc) error {
	p := &progress{fn: fn}
	p.report(0)

	doc := encodeDocument(rec.Pages())
	events := encodeEvents(rec.Actions(), version)
	audio := encodeAudio(rec.Audio(), version)

	crc := crc32.NewIEEE()
	crc.Write(doc)
	crc.Write(events)
	crc.Write(audio)

	for _, n := range []int{len(doc), len(events), len(audio)} {
		if n > math.MaxUint32 {
			return fmt.Errorf("recfile: block of %d bytes exceeds format limit", n)
		}
	}

	h := rec.Header()
	hdr := make([]byte, 0, HeaderSize)
	hdr = append(hdr, Magic...)
	hdr = binary.BigEndian.AppendUint32(hdr, version)
	hdr = append(hdr, h.ID[:]...)
	hdr = binary.BigEndian.AppendUint64(hdr, uint64(h.Created.UnixMilli()))
	hdr = binary.BigEndian.AppendUint64(hdr, uint64(h.Duration))
	hdr = binary.BigEndian.AppendUint32(hdr, crc.Sum32())
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(doc)))
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(events)))
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(audio)))

	total := float64(HeaderSize + len(doc) + len(events) + len(audio))
	written := 0
	for _, block := range [][]byte{hdr, doc, events, audio} {
		for len(block) > 0 {
			n := min(len(block), chunkSize)
			if _, err := w.Write(block[:n]); err != nil {
				return fmt.Errorf("recfile: write: %w", err)
			}
			block = block[n:]
			written += n
			p.report(float64(written) / total)
		}
	}

	p.done()
	return nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)    { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16)  { e.buf = binary.BigEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32)  { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }
func (e *encoder) i32(v int32)   { e.u32(uint32(v)) }
func (e *encoder) i64(v int64)   { e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v)) }
func (e *encoder) f64(v float64) { e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(v)) }

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) points(ps []domain.Point) {
	e.u32(uint32(len(ps)))
	for _, p := range ps {
		e.f64(p.X)
		e.f64(p.Y)
	}
}

func encodeDocument(pages []*domain.Page) []byte {
	var e encoder
	e.u32(uint32(len(pages)))
	for _, p := range pages {
		shapes := p.Shapes()
		e.u32(uint32(len(shapes)))
		for _, s := range shapes {
			e.i32(s.Handle)
			e.u8(uint8(s.Kind))
			e.u32(s.Brush.Color)
			e.f64(s.Brush.Width)
			e.points(s.Points)
			e.str(s.Text)
		}
	}
	return e.buf
}

func encodeEvents(actions []domain.PlaybackAction, version uint32) []byte {
	var e encoder
	e.u32(uint32(len(actions)))
	for _, a := range actions {
		lenAt := len(e.buf)
		e.u32(0)

		e.u8(uint8(a.Type))
		e.i64(a.Timestamp)
		e.u32(uint32(a.Page))
		e.i32(a.Handle)

		switch a.Type {
		case domain.ActionShapeCreate, domain.ActionShapeModify:
			e.u32(a.Brush.Color)
			e.f64(a.Brush.Width)
			e.points(a.Points)
		case domain.ActionTextChange:
			e.str(a.Text)
		case domain.ActionTextFontChange:
			e.str(a.Font.Family)
			e.f64(a.Font.Size)
			if version >= versionFontStyle {
				var style uint8
				if a.Font.Bold {
					style |= styleBold
				}
				if a.Font.Italic {
					style |= styleItalic
				}
				e.u8(style)
			}
		case domain.ActionTextLocationChange:
			var at domain.Point
			if len(a.Points) > 0 {
				at = a.Points[0]
			}
			e.f64(at.X)
			e.f64(at.Y)
		}

		binary.BigEndian.PutUint32(e.buf[lenAt:], uint32(len(e.buf)-lenAt-4))
	}
	return e.buf
}

// encodeAudio writes the format whenever one is set, so a track emptied by
// edits keeps its format. Older versions store raw data only.
func encodeAudio(a domain.Audio, version uint32) []byte {
	if version < versionAudioFormat {
		return a.Data
	}
	if a.Format.IsZero() {
		return nil
	}
	var e encoder
	e.u32(a.Format.SampleRate)
	e.u16(a.Format.Channels)
	e.u16(a.Format.BitsPerSample)
	e.buf = append(e.buf, a.Data...)
	return e.buf
}
