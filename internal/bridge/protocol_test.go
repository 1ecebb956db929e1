package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resizeRecorder struct {
	calls [][2]int
}

func (r *resizeRecorder) record(cols, rows int) {
	r.calls = append(r.calls, [2]int{cols, rows})
}

func TestEncodeResize(t *testing.T) {
	assert.Equal(t, []byte("\x1b]RESIZE;120;40\x07"), EncodeResize(120, 40))
	assert.Equal(t, []byte("\x1b]RESIZE;80;24\x07"), EncodeResize(80, 24))
}

func TestParser_PlainInputPassesThrough(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	out := p.Feed([]byte("ls -la\r"))
	assert.Equal(t, []byte("ls -la\r"), out)
	assert.Empty(t, rec.calls)
}

func TestParser_StripsResizeSequence(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	out := p.Feed([]byte("abc\x1b]RESIZE;100;30\x07def"))
	assert.Equal(t, []byte("abcdef"), out)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, [2]int{100, 30}, rec.calls[0])
}

func TestParser_SequenceSplitAcrossChunks(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	full := []byte("before\x1b]RESIZE;90;25\x07after")
	for _, splitAt := range []int{7, 9, 14, 20} {
		rec.calls = nil
		p = NewParser(rec.record)

		var out []byte
		out = append(out, p.Feed(full[:splitAt])...)
		out = append(out, p.Feed(full[splitAt:])...)
		out = append(out, p.Flush()...)

		assert.Equal(t, []byte("beforeafter"), out, "split at %d", splitAt)
		require.Len(t, rec.calls, 1, "split at %d", splitAt)
		assert.Equal(t, [2]int{90, 25}, rec.calls[0])
	}
}

func TestParser_ByteAtATime(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	var out []byte
	for _, b := range []byte("x\x1b]RESIZE;132;50\x07y") {
		out = append(out, p.Feed([]byte{b})...)
	}
	out = append(out, p.Flush()...)

	assert.Equal(t, []byte("xy"), out)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, [2]int{132, 50}, rec.calls[0])
}

func TestParser_NonResizeEscapePassesThrough(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	// Cursor-up followed by an OSC title sequence: neither is a resize.
	input := []byte("\x1b[A\x1b]0;title\x07")
	var out []byte
	out = append(out, p.Feed(input)...)
	out = append(out, p.Flush()...)

	assert.Equal(t, input, out)
	assert.Empty(t, rec.calls)
}

func TestParser_MalformedParamsConsumedWithoutCallback(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	out := p.Feed([]byte("\x1b]RESIZE;abc;def\x07tail"))
	assert.Equal(t, []byte("tail"), out)
	assert.Empty(t, rec.calls)

	out = p.Feed([]byte("\x1b]RESIZE;0;24\x07"))
	assert.Empty(t, out)
	assert.Empty(t, rec.calls, "zero dimensions are not a valid resize")

	out = p.Feed([]byte("\x1b]RESIZE;-5;24\x07"))
	assert.Empty(t, out)
	assert.Empty(t, rec.calls, "negative dimensions are not a valid resize")
}

func TestParser_UnterminatedOverlongFlushesAsLiteral(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	long := append([]byte("\x1b]RESIZE;"), make([]byte, maxSequenceLen)...)
	for i := range long[9:] {
		long[9+i] = '1'
	}

	var out []byte
	out = append(out, p.Feed(long)...)
	out = append(out, p.Flush()...)

	assert.Equal(t, long, out, "overlong unterminated candidate must pass through unchanged")
	assert.Empty(t, rec.calls)
}

func TestParser_TrailingPartialPrefixFlushed(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	out := p.Feed([]byte("end\x1b]RES"))
	assert.Equal(t, []byte("end"), out)

	flushed := p.Flush()
	assert.Equal(t, []byte("\x1b]RES"), flushed)
	assert.Empty(t, rec.calls)
}

func TestParser_BackToBackSequences(t *testing.T) {
	rec := &resizeRecorder{}
	p := NewParser(rec.record)

	out := p.Feed([]byte("\x1b]RESIZE;80;24\x07\x1b]RESIZE;100;40\x07"))
	assert.Empty(t, out)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, [2]int{80, 24}, rec.calls[0])
	assert.Equal(t, [2]int{100, 40}, rec.calls[1])
}

func TestParser_NilCallbackStillStrips(t *testing.T) {
	p := NewParser(nil)
	out := p.Feed([]byte("a\x1b]RESIZE;80;24\x07b"))
	assert.Equal(t, []byte("ab"), out)
}
