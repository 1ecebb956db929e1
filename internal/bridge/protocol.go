// Package bridge implements the PTY bridge core: an in-band control
// protocol for terminal resizes and the relay loop that runs a command
// inside a pseudo-terminal.
//
// The console and the bridge helper share a single stdin stream for both
// user keystrokes and control messages, so resizes travel as an OSC-style
// escape sequence that a terminal parser would never produce from
// legitimate user input:
//
//	ESC ] RESIZE ; <cols> ; <rows> BEL
package bridge

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	resizePrefix     = "\x1b]RESIZE;"
	resizeTerminator = 0x07 // BEL

	// Sequences longer than this without a terminator are not resize
	// controls; the buffered bytes flush through as literal input.
	maxSequenceLen = 64
)

// EncodeResize builds the resize control sequence for the given dimensions.
func EncodeResize(cols, rows int) []byte {
	return []byte(fmt.Sprintf("%s%d;%d%c", resizePrefix, cols, rows, resizeTerminator))
}

// Parser strips resize control sequences out of a byte stream, invoking
// onResize for each complete, well-formed sequence. Sequences may arrive
// split across chunks; bytes that start like the control prefix are held
// back until proven one way or the other. Malformed parameter lists are
// consumed without a callback, matching the wire contract that a resize
// either applies or silently does not.
type Parser struct {
	onResize func(cols, rows int)
	pending  []byte
}

// NewParser creates a Parser. onResize may be nil.
func NewParser(onResize func(cols, rows int)) *Parser {
	return &Parser{onResize: onResize}
}

// Feed processes a chunk and returns the literal input bytes with complete
// resize sequences removed. The returned slice is freshly allocated.
func (p *Parser) Feed(chunk []byte) []byte {
	data := chunk
	if len(p.pending) > 0 {
		data = append(p.pending, chunk...)
		p.pending = nil
	}

	var out []byte
	i := 0
	for i < len(data) {
		if data[i] != 0x1b {
			out = append(out, data[i])
			i++
			continue
		}

		rest := data[i:]
		if !hasControlPrefix(rest) {
			if isControlPrefixStart(rest) {
				// Chunk ends mid-prefix: hold until the next Feed decides.
				p.pending = append([]byte(nil), rest...)
				return out
			}
			out = append(out, data[i])
			i++
			continue
		}

		end := bytes.IndexByte(rest, resizeTerminator)
		if end == -1 {
			if len(rest) >= maxSequenceLen {
				// Unterminated and too long to be a resize.
				out = append(out, data[i])
				i++
				continue
			}
			p.pending = append([]byte(nil), rest...)
			return out
		}

		if cols, rows, ok := parseResizeParams(rest[len(resizePrefix):end]); ok && p.onResize != nil {
			p.onResize(cols, rows)
		}
		i += end + 1
	}
	return out
}

// Flush returns any held partial-sequence bytes as literal input and
// resets the parser. Call on stream end so trailing bytes are not lost.
func (p *Parser) Flush() []byte {
	out := p.pending
	p.pending = nil
	return out
}

// hasControlPrefix reports whether b starts with the full resize prefix.
func hasControlPrefix(b []byte) bool {
	return len(b) >= len(resizePrefix) && string(b[:len(resizePrefix)]) == resizePrefix
}

// isControlPrefixStart reports whether b is a proper prefix of the resize
// prefix (i.e. the chunk ended before the prefix could complete).
func isControlPrefixStart(b []byte) bool {
	if len(b) >= len(resizePrefix) {
		return false
	}
	return string(b) == resizePrefix[:len(b)]
}

// parseResizeParams parses "<cols>;<rows>", both positive base-10 integers.
func parseResizeParams(params []byte) (cols, rows int, ok bool) {
	sep := bytes.IndexByte(params, ';')
	if sep == -1 {
		return 0, 0, false
	}
	cols, err := strconv.Atoi(string(params[:sep]))
	if err != nil || cols <= 0 {
		return 0, 0, false
	}
	rows, err = strconv.Atoi(string(params[sep+1:]))
	if err != nil || rows <= 0 {
		return 0, 0, false
	}
	return cols, rows, true
}
