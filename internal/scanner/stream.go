package scanner

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultMaxLineBytes caps how much of a single output line is kept.
const DefaultMaxLineBytes = 64 * 1024

// ReadLines calls fn for every line read from src. Lines longer than maxBytes
// are truncated and the remainder discarded, so memory use stays bounded no
// matter how much the tool prints. Trailing CR/LF is stripped.
func ReadLines(src io.Reader, maxBytes int, fn func(line string)) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLineBytes
	}
	br := bufio.NewReaderSize(src, 4096)

	var (
		buf       strings.Builder
		truncated bool
	)
	flush := func() {
		fn(strings.TrimRight(buf.String(), "\r"))
		buf.Reset()
		truncated = false
	}

	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			complete := chunk[len(chunk)-1] == '\n'
			if complete {
				chunk = chunk[:len(chunk)-1]
			}
			if !truncated {
				room := maxBytes - buf.Len()
				if len(chunk) > room {
					chunk = chunk[:room]
					truncated = true
				}
				buf.Write(chunk)
			}
			if complete {
				flush()
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			if buf.Len() > 0 || truncated {
				flush()
			}
			return nil
		default:
			return err
		}
	}
}
