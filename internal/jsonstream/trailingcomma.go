package jsonstream

import (
	"bufio"
	"io"
)

// trailingCommaFilter wraps a reader and drops any comma that is followed
// (after optional whitespace) only by a closing '}' or ']', so that
// page files with a trailing comma inside an object or array — tolerated
// by spec but rejected by encoding/json — parse cleanly. Commas inside
// string literals are left untouched.
type trailingCommaFilter struct {
	src      *bufio.Reader
	inString bool
	escaped  bool
}

func stripTrailingCommas(r io.Reader) io.Reader {
	return &trailingCommaFilter{src: bufio.NewReader(r)}
}

func (f *trailingCommaFilter) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := f.src.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		if f.inString {
			p[n] = b
			n++
			if f.escaped {
				f.escaped = false
			} else if b == '\\' {
				f.escaped = true
			} else if b == '"' {
				f.inString = false
			}
			continue
		}

		if b == '"' {
			f.inString = true
			p[n] = b
			n++
			continue
		}

		if b != ',' {
			p[n] = b
			n++
			continue
		}

		if f.nextNonSpaceClosesStructure() {
			continue
		}
		p[n] = b
		n++
	}
	return n, nil
}

// nextNonSpaceClosesStructure peeks past whitespace after a comma and
// reports whether the next significant byte is a closing brace/bracket.
func (f *trailingCommaFilter) nextNonSpaceClosesStructure() bool {
	skipped := 0
	for {
		peek, err := f.src.Peek(skipped + 1)
		if err != nil {
			return false
		}
		b := peek[skipped]
		switch b {
		case ' ', '\t', '\n', '\r':
			skipped++
			continue
		case '}', ']':
			_, _ = f.src.Discard(skipped)
			return true
		default:
			return false
		}
	}
}
