// Package zmin is a three-tier JSON minifier: given well-formed JSON
// text, it produces a semantically equivalent text with all insignificant
// whitespace removed and all string/number lexemes preserved byte-for-
// byte. Three interchangeable back ends are provided — Eco (streaming,
// O(1) memory), Sport (single-threaded SIMD block scan), and Turbo
// (chunked, work-stealing parallel) — sharing one validation discipline
// and producing byte-identical output for any valid input.
package zmin

import (
	"io"
)

// Minify minifies input using the given mode and returns a freshly
// allocated result. The input is not modified.
func Minify(input []byte, mode Mode) ([]byte, error) {
	if len(input) == 0 {
		return nil, newErr(EmptyInput, 0, "zero-length input")
	}
	if err := Validate(input); err != nil {
		return nil, err
	}
	return minifyBytes(input, mode)
}

// minifyBytes dispatches to a back end without re-validating; callers
// that have already validated (e.g. MinifyNDStream, per-line) use this
// directly.
func minifyBytes(input []byte, mode Mode) ([]byte, error) {
	switch mode {
	case Eco:
		return minifyEco(input), nil
	case Sport:
		return MinifySport(input)
	case Turbo:
		return MinifyTurbo(input)
	default:
		return nil, newErr(Internal, -1, "unknown mode")
	}
}

// MinifyInto minifies input into the caller-supplied output buffer and
// returns the number of bytes written. OutputBufferTooSmall is returned
// if output is shorter than the minified form.
func MinifyInto(input []byte, output []byte, mode Mode) (int, error) {
	if len(input) == 0 {
		return 0, newErr(EmptyInput, 0, "zero-length input")
	}
	if err := Validate(input); err != nil {
		return 0, err
	}
	switch mode {
	case Eco:
		out := minifyEco(input)
		if len(output) < len(out) {
			return 0, newErr(OutputBufferTooSmall, -1, "output buffer shorter than minified form")
		}
		return copy(output, out), nil
	case Sport:
		caps := Detect()
		if len(output) >= len(input) {
			return minifyBlock(input, output, caps)
		}
		out, err := MinifySport(input)
		if err != nil {
			return 0, err
		}
		if len(output) < len(out) {
			return 0, newErr(OutputBufferTooSmall, -1, "output buffer shorter than minified form")
		}
		return copy(output, out), nil
	case Turbo:
		out, err := MinifyTurbo(input)
		if err != nil {
			return 0, err
		}
		if len(output) < len(out) {
			return 0, newErr(OutputBufferTooSmall, -1, "output buffer shorter than minified form")
		}
		return copy(output, out), nil
	default:
		return 0, newErr(Internal, -1, "unknown mode")
	}
}

// MinifyString is a convenience wrapper around Minify for string input.
func MinifyString(s string, mode Mode) (string, error) {
	out, err := Minify([]byte(s), mode)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// minifyStreamMode dispatches MinifyStream-shaped calls by mode: Eco
// streams directly; Sport and Turbo buffer the reader fully first (spec
// §6: "mode defaults to ECO; SPORT and TURBO may internally buffer").
func minifyStreamMode(r io.Reader, w io.Writer, mode Mode) error {
	if mode == Eco {
		return MinifyStream(r, w)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return wrapErr(IoError, -1, "reader failed", err)
	}
	out, err := Minify(buf, mode)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	if err != nil {
		return wrapErr(IoError, -1, "writer failed", err)
	}
	return nil
}

// MinifyStreamMode is MinifyStream generalized over all three modes.
func MinifyStreamMode(r io.Reader, w io.Writer, mode Mode) error {
	return minifyStreamMode(r, w, mode)
}
