// Package console keeps a bounded scrollback of the managed server's
// output. Chunks arrive as raw bytes pushed by the daemon and may split
// lines anywhere, including mid-rune; the buffer reassembles lines across
// chunk boundaries.
package console

import "strings"

const defaultMaxLines = 2000

// Buffer is a bounded line scrollback. Not safe for concurrent use; it is
// mutated only from the UI event loop.
type Buffer struct {
	lines   []string
	partial []byte
	max     int
}

// NewBuffer returns a scrollback holding at most maxLines completed lines;
// maxLines <= 0 uses the default.
func NewBuffer(maxLines int) *Buffer {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	return &Buffer{max: maxLines}
}

// Append ingests one output chunk, completing lines at each newline and
// carrying any trailing fragment, raw bytes included, to the next call. A
// multi-byte rune split across two chunks stays intact because the
// fragment is not decoded until its line completes.
func (b *Buffer) Append(chunk []byte) {
	for _, c := range chunk {
		if c == '\n' {
			b.pushLine(strings.TrimSuffix(string(b.partial), "\r"))
			b.partial = b.partial[:0]
			continue
		}
		b.partial = append(b.partial, c)
	}
}

// AppendLine adds a completed line directly, bypassing fragment carry.
// Used for console-local annotations such as operation failures.
func (b *Buffer) AppendLine(line string) {
	b.pushLine(line)
}

func (b *Buffer) pushLine(line string) {
	b.lines = append(b.lines, line)
	if overflow := len(b.lines) - b.max; overflow > 0 {
		b.lines = append(b.lines[:0], b.lines[overflow:]...)
	}
}

// Lines returns the completed lines plus any pending fragment, oldest
// first. The returned slice is freshly allocated.
func (b *Buffer) Lines() []string {
	out := make([]string, 0, len(b.lines)+1)
	out = append(out, b.lines...)
	if len(b.partial) > 0 {
		out = append(out, string(b.partial))
	}
	return out
}

// Len reports the number of completed lines held.
func (b *Buffer) Len() int { return len(b.lines) }

// Clear drops all content, pending fragment included.
func (b *Buffer) Clear() {
	b.lines = nil
	b.partial = b.partial[:0]
}
