package recfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/bft-labs/lectrec/internal/domain"
)

var testFormat = domain.AudioFormat{SampleRate: 8000, Channels: 2, BitsPerSample: 16}

func testRecording(audioMillis int64) *domain.Recording {
	brush := domain.Brush{Color: 0x336699ff, Width: 2.5}
	pages := []*domain.Page{
		domain.NewPage(
			domain.Shape{Handle: 1, Kind: domain.ShapeStroke, Brush: brush, Points: []domain.Point{{X: 1, Y: 2}, {X: 3.5, Y: 4.25}}},
			domain.Shape{Handle: 2, Kind: domain.ShapeText, Brush: brush, Points: []domain.Point{{X: 10, Y: 10}}, Text: "héllo"},
		),
		domain.NewPage(),
	}
	actions := []domain.PlaybackAction{
		domain.NewPageSelected(0, 0),
		domain.NewShapeCreate(100, 0, 1, brush, domain.Point{X: 1, Y: 2}, domain.Point{X: 3.5, Y: 4.25}),
		domain.NewShapeCreate(200, 0, 2, brush, domain.Point{X: 10, Y: 10}),
		domain.NewTextChange(300, 0, 2, "héllo"),
		domain.NewTextFontChange(400, 0, 2, domain.Font{Family: "Serif", Size: 14, Bold: true, Italic: true}),
		domain.NewTextLocationChange(500, 0, 2, domain.Point{X: -1.5, Y: 7}),
		domain.NewShapeModify(600, 0, 1, brush, domain.Point{X: 0, Y: 0}),
		domain.NewShapeRemove(700, 0, 1),
		domain.NewPageSelected(800, 1),
	}
	data := make([]byte, testFormat.ByteOffset(audioMillis))
	for i := range data {
		data[i] = byte(i * 7)
	}
	audio := domain.Audio{Format: testFormat, Data: data}
	if audioMillis == 0 {
		audio = domain.Audio{}
	}
	return domain.NewRecording(domain.NewHeader(1000), pages, actions, audio)
}

func encodeBytes(t *testing.T, rec *domain.Recording, version uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := encode(&buf, rec, version, nil); err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	return buf.Bytes()
}

func assertSameRecording(t *testing.T, got, want *domain.Recording) {
	t.Helper()
	gh, wh := got.Header(), want.Header()
	if gh.ID != wh.ID || gh.Duration != wh.Duration || !gh.Created.Equal(wh.Created) {
		t.Errorf("header = %+v, want %+v", gh, wh)
	}

	ga, wa := got.Actions(), want.Actions()
	if len(ga) != len(wa) {
		t.Fatalf("got %d actions, want %d", len(ga), len(wa))
	}
	for i := range wa {
		if !ga[i].Equal(wa[i]) {
			t.Errorf("action %d = %+v, want %+v", i, ga[i], wa[i])
		}
	}

	gp, wp := got.Pages(), want.Pages()
	if len(gp) != len(wp) {
		t.Fatalf("got %d pages, want %d", len(gp), len(wp))
	}
	for i := range wp {
		gs, ws := gp[i].Shapes(), wp[i].Shapes()
		if len(gs) != len(ws) {
			t.Fatalf("page %d: got %d shapes, want %d", i, len(gs), len(ws))
		}
		for k := range ws {
			if !gs[k].Equal(ws[k]) {
				t.Errorf("page %d shape %d = %+v, want %+v", i, k, gs[k], ws[k])
			}
		}
	}

	if got.Audio().Format != want.Audio().Format || !bytes.Equal(got.Audio().Data, want.Audio().Data) {
		t.Error("audio differs")
	}
	if got.StateHash() != want.StateHash() {
		t.Error("state hash differs")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		audioMillis int64
	}{
		{"with audio", 1000},
		{"without audio", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecording(tt.audioMillis)

			var buf bytes.Buffer
			if err := Encode(&buf, rec, nil); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Header().Version != FormatVersion {
				t.Errorf("Version = %d, want %d", got.Header().Version, FormatVersion)
			}
			assertSameRecording(t, got, rec)
		})
	}
}

func TestRoundTrip_FormatWithoutData(t *testing.T) {
	rec := testRecording(0)
	rec.Apply(func(tx *domain.Tx) { tx.SetAudio(domain.Audio{Format: testFormat}) })

	var buf bytes.Buffer
	if err := Encode(&buf, rec, nil); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Audio().Format != testFormat {
		t.Errorf("audio format = %+v, want %+v", got.Audio().Format, testFormat)
	}
	if len(got.Audio().Data) != 0 {
		t.Errorf("audio holds %d bytes, want none", len(got.Audio().Data))
	}
	assertSameRecording(t, got, rec)
}

func TestDecode_OlderVersions(t *testing.T) {
	rec := testRecording(100)

	v2, err := Decode(bytes.NewReader(encodeBytes(t, rec, 2)))
	if err != nil {
		t.Fatalf("Decode(v2) error = %v", err)
	}
	font := v2.Actions()[4].Font
	if font.Family != "Serif" || font.Size != 14 || font.Bold || font.Italic {
		t.Errorf("v2 font = %+v, want Serif 14 without style", font)
	}
	if v2.Audio().Format != testFormat {
		t.Errorf("v2 audio format = %+v", v2.Audio().Format)
	}

	v1, err := Decode(bytes.NewReader(encodeBytes(t, rec, 1)))
	if err != nil {
		t.Fatalf("Decode(v1) error = %v", err)
	}
	if v1.Audio().Format != LegacyAudioFormat {
		t.Errorf("v1 audio format = %+v, want %+v", v1.Audio().Format, LegacyAudioFormat)
	}
	if !bytes.Equal(v1.Audio().Data, rec.Audio().Data) {
		t.Error("v1 audio data differs")
	}
}

// patchBody rewrites the body and fixes up the checksum.
func patchBody(data []byte, fn func(body []byte)) []byte {
	out := bytes.Clone(data)
	body := out[HeaderSize:]
	fn(body)
	binary.BigEndian.PutUint32(out[40:], crc32.ChecksumIEEE(body))
	return out
}

func TestDecode_Incompatible(t *testing.T) {
	valid := encodeBytes(t, testRecording(10), FormatVersion)
	docLen := int(binary.BigEndian.Uint32(valid[44:]))

	tests := []struct {
		name        string
		data        []byte
		wantVersion uint32
	}{
		{"empty", nil, 0},
		{"short header", valid[:20], 0},
		{"bad magic", append([]byte("NOPE"), valid[4:]...), 0},
		{"future version", func() []byte {
			b := bytes.Clone(valid)
			binary.BigEndian.PutUint32(b[4:], FormatVersion+1)
			return b
		}(), FormatVersion + 1},
		{"version zero", func() []byte {
			b := bytes.Clone(valid)
			binary.BigEndian.PutUint32(b[4:], 0)
			return b
		}(), 0},
		{"truncated body", valid[:len(valid)-3], FormatVersion},
		{"checksum mismatch", func() []byte {
			b := bytes.Clone(valid)
			b[len(b)-1] ^= 0xff
			return b
		}(), FormatVersion},
		{"unknown action type", patchBody(valid, func(body []byte) {
			// first action: count(4) + length(4), then the type byte
			body[docLen+8] = 0x7f
		}), FormatVersion},
		{"unknown shape kind", patchBody(valid, func(body []byte) {
			// pageCount(4) + shapeCount(4) + handle(4), then the kind byte
			body[12] = 0x7f
		}), FormatVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, domain.ErrIncompatibleFileFormat) {
				t.Fatalf("Decode() error = %v, want ErrIncompatibleFileFormat", err)
			}
			var ferr *domain.IncompatibleFileFormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("error %T is not *IncompatibleFileFormatError", err)
			}
			if ferr.Version != tt.wantVersion {
				t.Errorf("Version = %d, want %d", ferr.Version, tt.wantVersion)
			}
		})
	}
}

func TestEncode_Progress(t *testing.T) {
	rec := testRecording(20000) // larger than one chunk

	var reports []float64
	var buf bytes.Buffer
	if err := Encode(&buf, rec, func(f float64) { reports = append(reports, f) }); err != nil {
		t.Fatal(err)
	}

	if len(reports) < 3 {
		t.Fatalf("got %d progress reports, want several", len(reports))
	}
	if reports[0] != 0 {
		t.Errorf("first report = %v, want 0", reports[0])
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] < reports[i-1] {
			t.Fatalf("progress decreased: %v", reports)
		}
	}
	if last := reports[len(reports)-1]; last != 1 {
		t.Errorf("last report = %v, want exactly 1", last)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestEncode_WriteError(t *testing.T) {
	err := Encode(&failingWriter{n: 1}, testRecording(10), nil)
	if err == nil {
		t.Fatal("Encode() succeeded on failing writer")
	}
	if errors.Is(err, domain.ErrIncompatibleFileFormat) {
		t.Error("write error reported as format error")
	}
}

func TestProgress_Contract(t *testing.T) {
	var got []float64
	p := &progress{fn: func(f float64) { got = append(got, f) }}
	p.report(0)
	p.report(0.5)
	p.report(0.4)
	p.report(2)
	p.done()

	want := []float64{0, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %v, want %v", i, got[i], want[i])
		}
	}

	var nilFn progress
	nilFn.report(0.5)
	nilFn.done()
}

