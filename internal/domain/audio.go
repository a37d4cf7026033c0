package domain

// AudioFormat describes interleaved PCM audio.
type AudioFormat struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
}

// IsZero reports whether no format is set.
func (f AudioFormat) IsZero() bool {
	return f == AudioFormat{}
}

// FrameSize returns the number of bytes per sample frame.
func (f AudioFormat) FrameSize() int64 {
	return int64(f.Channels) * int64(f.BitsPerSample/8)
}

// ByteOffset converts a millisecond position into a byte offset aligned to a
// whole frame. Only integer arithmetic is used so that the same position
// always maps to the same byte, however often a timeline is edited.
func (f AudioFormat) ByteOffset(ms int64) int64 {
	if f.SampleRate == 0 || ms <= 0 {
		return 0
	}
	return ms * int64(f.SampleRate) / 1000 * f.FrameSize()
}

// Millis converts a byte length into milliseconds, truncating.
func (f AudioFormat) Millis(n int64) int64 {
	fs := f.FrameSize()
	if f.SampleRate == 0 || fs == 0 {
		return 0
	}
	return n / fs * 1000 / int64(f.SampleRate)
}

// Audio is the recorded audio track. Data is never modified in place; Cut and
// Slice return values backed by new arrays or by read-only subslices.
type Audio struct {
	Format AudioFormat
	Data   []byte
}

// Empty reports whether the recording carries no audio.
func (a Audio) Empty() bool {
	return a.Format.IsZero() || len(a.Data) == 0
}

// DurationMillis returns the length of the track in milliseconds.
func (a Audio) DurationMillis() int64 {
	return a.Format.Millis(int64(len(a.Data)))
}

// Cut returns the track with [iv.Begin, iv.End) removed from a timeline of
// duration milliseconds. The removed byte count is derived from the timeline
// lengths before and after the cut, so a track holding ByteOffset(duration)
// bytes holds exactly ByteOffset(duration-iv.Length()) afterwards, however
// many cuts are made.
func (a Audio) Cut(iv Interval, duration int64) Audio {
	if a.Empty() {
		return a
	}
	n := int64(len(a.Data))
	removed := a.Format.ByteOffset(duration) - a.Format.ByteOffset(duration-iv.Length())
	from := min(a.Format.ByteOffset(iv.Begin), n)
	to := min(from+removed, n)
	data := make([]byte, 0, n-(to-from))
	data = append(data, a.Data[:from]...)
	data = append(data, a.Data[to:]...)
	return Audio{Format: a.Format, Data: data}
}

// Slice returns ByteOffset(iv.Length()) bytes starting at iv.Begin, clamped
// to the track.
func (a Audio) Slice(iv Interval) Audio {
	if a.Empty() {
		return a
	}
	n := int64(len(a.Data))
	from := min(a.Format.ByteOffset(iv.Begin), n)
	to := min(from+a.Format.ByteOffset(iv.Length()), n)
	return Audio{Format: a.Format, Data: a.Data[from:to:to]}
}
