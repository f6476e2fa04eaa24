package application

import (
	"bufio"
	"io"
	"iter"
)

// Bytes yields the bytes of r one at a time until end of stream. A read error
// is yielded once and ends the sequence. The sequence consumes r and cannot
// be restarted.
func Bytes(r io.Reader) iter.Seq2[byte, error] {
	return func(yield func(byte, error) bool) {
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(0, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

// Lines yields the lines of r with "\n", "\r\n" or a lone "\r" stripped. A
// final line without terminator is yielded as well. Lines have no length
// limit.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)
		var line []byte
		for {
			b, err := br.ReadByte()
			if err == io.EOF {
				if len(line) > 0 {
					yield(string(line), nil)
				}
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			switch b {
			case '\r':
				// "\r\n" ends a single line
				next, err := br.Peek(1)
				if err != nil && err != io.EOF {
					yield("", err)
					return
				}
				if len(next) == 1 && next[0] == '\n' {
					br.ReadByte()
				}
				fallthrough
			case '\n':
				if !yield(string(line), nil) {
					return
				}
				line = line[:0]
			default:
				line = append(line, b)
			}
		}
	}
}
