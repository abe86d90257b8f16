package zmin

import "encoding/binary"

// wordFill repeats b across all eight bytes of a uint64 lane.
func wordFill(b byte) uint64 {
	return uint64(b) * 0x0101010101010101
}

// hasZeroByte reports whether any of the eight bytes packed into v is
// zero (the classic SWAR "has zero byte" trick: Bit Twiddling Hacks,
// also used internally by the standard library's bytes package).
func hasZeroByte(v uint64) bool {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	return (v-lo)&^v&hi != 0
}

// hasByteValue reports whether any of the eight bytes packed into v
// equals b.
func hasByteValue(v uint64, b byte) bool {
	return hasZeroByte(v ^ wordFill(b))
}

// isWhitespaceWord reports whether any byte in v is one of the four JSON
// insignificant whitespace bytes.
func isWhitespaceWord(v uint64) bool {
	return hasByteValue(v, ' ') || hasByteValue(v, '\t') || hasByteValue(v, '\n') || hasByteValue(v, '\r')
}

// minifyBlock is the SIMD-accelerated block minifier, expressed as
// portable SWAR word-at-a-time scanning rather than hand-written
// amd64 assembly: each 8-byte lane is tested for a quote or whitespace
// byte with the bit tricks above, the same mask computation minio/
// simdjson-go's find_quote_mask_and_bits / find_whitespace_and_structurals
// perform with AVX2/SSE intrinsics, just run a lane at a time instead of
// a full vector at a time. caps.VectorWidth selects how many 8-byte lanes
// form one "block": 16/32/64 bytes for Tier128/256/512, degenerating to
// the scalar machine at TierScalar.
//
// minifyBlock writes into output and returns the number of bytes written.
// output must be at least len(input) bytes; OutputBufferTooSmall is
// returned otherwise.
func minifyBlock(input []byte, output []byte, caps CpuCaps) (int, error) {
	if len(output) < len(input) {
		return 0, newErr(OutputBufferTooSmall, -1, "output buffer shorter than input")
	}
	blockWords := caps.VectorWidth / 8
	if blockWords < 1 {
		return copy(output, minifyEco(input)), nil
	}
	blockSize := blockWords * 8

	var st ecoState
	in := input
	n := len(in)
	i := 0
	w := 0 // write cursor into output

	emit := func(c byte) {
		if st.step(c) {
			output[w] = c
			w++
		}
	}

	for i+blockSize <= n {
		if !st.inString {
			quotePos := -1
			for lane := 0; lane < blockWords; lane++ {
				word := binary.LittleEndian.Uint64(in[i+lane*8:])
				if hasByteValue(word, '"') {
					base := lane * 8
					for k := 0; k < 8; k++ {
						if in[i+base+k] == '"' {
							quotePos = base + k
							break
						}
					}
					break
				}
			}
			if quotePos == -1 {
				// No quote in this block: bulk-copy if also no
				// whitespace, else scalar-compress the block.
				clean := true
				for lane := 0; lane < blockWords; lane++ {
					word := binary.LittleEndian.Uint64(in[i+lane*8:])
					if isWhitespaceWord(word) {
						clean = false
						break
					}
				}
				if clean {
					copy(output[w:], in[i:i+blockSize])
					w += blockSize
				} else {
					for k := 0; k < blockSize; k++ {
						emit(in[i+k])
					}
				}
				i += blockSize
				continue
			}
			// Quote wins the tie-break: process the no-quote prefix,
			// then the quote itself (transitions into the string).
			for k := 0; k < quotePos; k++ {
				emit(in[i+k])
			}
			emit(in[i+quotePos])
			i += quotePos + 1
			continue
		}

		// Inside a string. A pending escape from the previous block
		// consumes exactly one byte before the block scan resumes.
		if st.escapePending {
			emit(in[i])
			i++
			continue
		}

		// Look for the first quote or backslash.
		hit := -1
		for lane := 0; lane < blockWords; lane++ {
			word := binary.LittleEndian.Uint64(in[i+lane*8:])
			if hasByteValue(word, '"') || hasByteValue(word, '\\') {
				base := lane * 8
				for k := 0; k < 8; k++ {
					c := in[i+base+k]
					if c == '"' || c == '\\' {
						hit = base + k
						break
					}
				}
				break
			}
		}
		if hit == -1 {
			// No terminator or escape: the whole block is string
			// content, copy verbatim.
			copy(output[w:], in[i:i+blockSize])
			w += blockSize
			i += blockSize
			continue
		}
		for k := 0; k <= hit; k++ {
			emit(in[i+k])
		}
		i += hit + 1
	}

	for ; i < n; i++ {
		emit(in[i])
	}

	return w, nil
}

// MinifySport runs the C4 block minifier over input using the detected
// CPU capability record and returns a freshly allocated result.
func MinifySport(input []byte) ([]byte, error) {
	caps := Detect()
	output := make([]byte, len(input))
	w, err := minifyBlock(input, output, caps)
	if err != nil {
		return nil, err
	}
	return output[:w], nil
}
