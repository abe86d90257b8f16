package zmin

import (
	"bufio"
	"io"
)

// ecoBufSize is the fixed I/O buffer size used by the streaming machine:
// exactly one input buffer and one output buffer of this size, giving O(1)
// memory relative to input length.
const ecoBufSize = 64 << 10

// ecoState is the character machine's scalar state, shared in shape with
// validatorState but kept separate: the streaming machine does not track
// nesting depth, since it performs no validation of its own.
type ecoState struct {
	inString      bool
	escapePending bool
}

// step processes one byte, returning whether it is significant (should be
// emitted).
func (s *ecoState) step(c byte) bool {
	if s.escapePending {
		s.escapePending = false
		return true
	}
	if s.inString {
		switch c {
		case '\\':
			s.escapePending = true
		case '"':
			s.inString = false
		}
		return true
	}
	switch c {
	case '"':
		s.inString = true
		return true
	case ' ', '\t', '\n', '\r':
		return false
	default:
		return true
	}
}

// MinifyStream consumes r in fixed 64KiB chunks and writes the minified
// form to w. It performs no validation; callers that need rejection of
// malformed input should call Validate first (or accept the machine's
// best-effort output on malformed input).
func MinifyStream(r io.Reader, w io.Writer) error {
	in := make([]byte, ecoBufSize)
	out := make([]byte, 0, ecoBufSize)
	var st ecoState

	for {
		n, rerr := r.Read(in)
		if n > 0 {
			out = out[:0]
			for i := 0; i < n; i++ {
				c := in[i]
				if st.step(c) {
					out = append(out, c)
				}
			}
			if len(out) > 0 {
				if _, werr := w.Write(out); werr != nil {
					return wrapErr(IoError, -1, "writer failed", werr)
				}
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return wrapErr(IoError, -1, "reader failed", rerr)
		}
	}
}

// MinifyNDStream minifies newline-delimited JSON: each line is validated
// and minified independently and written back separated by a single '\n'.
// The read loop follows the same buffered-scanner shape as minio/
// simdjson-go's ParseNDStream, adapted from parse-each-line-into-a-tape
// to validate-and-minify-each-line.
func MinifyNDStream(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, ecoBufSize), 1<<20)
	first := true
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := Validate(line); err != nil {
			return err
		}
		out, err := minifyBytes(line, Eco)
		if err != nil {
			return err
		}
		if !first {
			if _, werr := w.Write([]byte{'\n'}); werr != nil {
				return wrapErr(IoError, -1, "writer failed", werr)
			}
		}
		first = false
		if _, werr := w.Write(out); werr != nil {
			return wrapErr(IoError, -1, "writer failed", werr)
		}
	}
	if err := sc.Err(); err != nil {
		return wrapErr(IoError, -1, "reader failed", err)
	}
	return nil
}

// minifyEco runs the scalar machine over a fully-buffered input and
// returns the minified bytes. Used as the Eco mode back end for
// Minify/MinifyInto, as Sport's whole-input fallback when the vector width
// is below one 8-byte lane, and as the reference output every other mode's
// result is checked against.
func minifyEco(input []byte) []byte {
	out := make([]byte, 0, len(input))
	var st ecoState
	for _, c := range input {
		if st.step(c) {
			out = append(out, c)
		}
	}
	return out
}
