package recfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/bft-labs/lectrec/internal/domain"
)

var errTruncated = errors.New("unexpected end of data")

// Decode reads a recording from r. Malformed or unsupported input fails with
// a *domain.IncompatibleFileFormatError; I/O errors are returned wrapped.
func Decode(r io.Reader) (*domain.Recording, error) {
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, formatError(0, "header", errTruncated)
		}
		return nil, fmt.Errorf("recfile: read header: %w", err)
	}

	if string(hdr[:4]) != Magic {
		return nil, formatError(0, fmt.Sprintf("bad magic %q", hdr[:4]), nil)
	}
	d := decoder{buf: hdr[4:]}
	version := d.u32()
	if version < MinCompatibleVersion || version > FormatVersion {
		return nil, formatError(version, fmt.Sprintf("supported versions are %d to %d", MinCompatibleVersion, FormatVersion), nil)
	}

	var header domain.Header
	copy(header.ID[:], d.bytes(16))
	header.Created = time.UnixMilli(d.i64())
	header.Duration = d.i64()
	header.Version = version
	checksum := d.u32()
	docLen, eventsLen, audioLen := d.u32(), d.u32(), d.u32()

	bodyLen := int64(docLen) + int64(eventsLen) + int64(audioLen)
	body, err := io.ReadAll(io.LimitReader(r, bodyLen))
	if err != nil {
		return nil, fmt.Errorf("recfile: read body: %w", err)
	}
	if int64(len(body)) < bodyLen {
		return nil, formatError(version, "body", errTruncated)
	}
	if sum := crc32.ChecksumIEEE(body); sum != checksum {
		return nil, formatError(version, fmt.Sprintf("checksum mismatch: stored %08x, computed %08x", checksum, sum), nil)
	}

	dl, el := int64(docLen), int64(eventsLen)
	pages, err := decodeDocument(body[:dl])
	if err != nil {
		return nil, formatError(version, "document block", err)
	}
	actions, err := decodeEvents(body[dl:dl+el], version)
	if err != nil {
		return nil, formatError(version, "events block", err)
	}
	audio, err := decodeAudio(body[dl+el:], version)
	if err != nil {
		return nil, formatError(version, "audio block", err)
	}

	rec := domain.NewRecording(header, pages, actions, audio)
	if err := rec.Validate(); err != nil {
		return nil, formatError(version, "invalid content", err)
	}
	return rec, nil
}

func formatError(version uint32, reason string, err error) error {
	return &domain.IncompatibleFileFormatError{Version: version, Reason: reason, Err: err}
}

// decoder reads big-endian values from a buffer. The first short read sets
// err; later reads return zero values.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || n > len(d.buf) {
		d.err = errTruncated
		d.buf = nil
		return nil
	}
	b := d.buf[:n:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) u8() uint8 {
	if b := d.bytes(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.bytes(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.bytes(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (d *decoder) i32() int32   { return int32(d.u32()) }
func (d *decoder) f64() float64 { return math.Float64frombits(d.u64()) }
func (d *decoder) i64() int64   { return int64(d.u64()) }

func (d *decoder) u64() uint64 {
	if b := d.bytes(8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) str() string {
	return string(d.bytes(int(d.u32())))
}

// count reads an element count and rejects counts that cannot fit in the
// remaining data, given the minimum encoded size of one element.
func (d *decoder) count(minSize int) int {
	n := d.u32()
	if d.err == nil && uint64(n)*uint64(minSize) > uint64(len(d.buf)) {
		d.err = errTruncated
		return 0
	}
	return int(n)
}

func (d *decoder) points() []domain.Point {
	n := d.count(16)
	if n == 0 {
		return nil
	}
	ps := make([]domain.Point, n)
	for i := range ps {
		ps[i] = domain.Point{X: d.f64(), Y: d.f64()}
	}
	return ps
}

func decodeDocument(b []byte) ([]*domain.Page, error) {
	d := decoder{buf: b}
	pages := make([]*domain.Page, d.count(4))
	for i := range pages {
		shapes := make([]domain.Shape, d.count(25))
		for k := range shapes {
			s := domain.Shape{
				Handle: d.i32(),
				Kind:   domain.ShapeKind(d.u8()),
				Brush:  domain.Brush{Color: d.u32(), Width: d.f64()},
			}
			s.Points = d.points()
			s.Text = d.str()
			if d.err == nil && !s.Kind.Valid() {
				return nil, fmt.Errorf("page %d: unknown shape kind %d", i, s.Kind)
			}
			shapes[k] = s
		}
		pages[i] = domain.NewPage(shapes...)
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(d.buf))
	}
	return pages, nil
}

func decodeEvents(b []byte, version uint32) ([]domain.PlaybackAction, error) {
	d := decoder{buf: b}
	actions := make([]domain.PlaybackAction, d.count(4+actionPrefixSize))
	for i := range actions {
		rec := decoder{buf: d.bytes(int(d.u32()))}
		if d.err != nil {
			return nil, fmt.Errorf("action %d: %w", i, d.err)
		}
		a, err := decodeAction(&rec, version)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions[i] = a
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(d.buf))
	}
	return actions, nil
}

func decodeAction(d *decoder, version uint32) (domain.PlaybackAction, error) {
	a := domain.PlaybackAction{
		Type:      domain.ActionType(d.u8()),
		Timestamp: d.i64(),
		Page:      int(d.u32()),
		Handle:    d.i32(),
	}
	if d.err != nil {
		return a, d.err
	}

	switch a.Type {
	case domain.ActionShapeCreate, domain.ActionShapeModify:
		a.Brush = domain.Brush{Color: d.u32(), Width: d.f64()}
		a.Points = d.points()
	case domain.ActionShapeRemove, domain.ActionPageSelected:
	case domain.ActionTextChange:
		a.Text = d.str()
	case domain.ActionTextFontChange:
		a.Font.Family = d.str()
		a.Font.Size = d.f64()
		if version >= versionFontStyle {
			style := d.u8()
			a.Font.Bold = style&styleBold != 0
			a.Font.Italic = style&styleItalic != 0
		}
	case domain.ActionTextLocationChange:
		a.Points = []domain.Point{{X: d.f64(), Y: d.f64()}}
	default:
		return a, fmt.Errorf("unknown action type %d", a.Type)
	}

	if d.err != nil {
		return a, d.err
	}
	if len(d.buf) != 0 {
		return a, fmt.Errorf("%s: %d trailing bytes", a.Type, len(d.buf))
	}
	return a, nil
}

func decodeAudio(b []byte, version uint32) (domain.Audio, error) {
	if len(b) == 0 {
		return domain.Audio{}, nil
	}
	if version < versionAudioFormat {
		return domain.Audio{Format: LegacyAudioFormat, Data: b}, nil
	}
	d := decoder{buf: b}
	f := domain.AudioFormat{SampleRate: d.u32(), Channels: d.u16(), BitsPerSample: d.u16()}
	if d.err != nil {
		return domain.Audio{}, d.err
	}
	if f.SampleRate == 0 || f.FrameSize() == 0 {
		return domain.Audio{}, fmt.Errorf("invalid audio format %+v", f)
	}
	if rem := int64(len(d.buf)) % f.FrameSize(); rem != 0 {
		return domain.Audio{}, fmt.Errorf("audio data ends in a partial frame (%d bytes)", rem)
	}
	return domain.Audio{Format: f, Data: d.buf}, nil
}
