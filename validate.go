package zmin

// maxDepth is the maximum nesting depth a well-formed document may reach.
// Depth 64 is accepted; depth 65 is rejected.
const maxDepth = 64

type ctxKind uint8

const (
	ctxObject ctxKind = iota
	ctxArray
)

// frameState is the grammar position within one open object or array
// context: what token class is legal next.
type frameState uint8

const (
	arrEmptyOrValue  frameState = iota // just opened: value or ']'
	arrValue                           // after ',': a value is required
	arrCommaOrClose                    // after a value: ',' or ']'
	objEmptyOrKey                      // just opened: a key string or '}'
	objKey                             // after ',': a key string is required
	objColon                           // after a key: ':' is required
	objValue                           // after ':': a value is required
	objCommaOrClose                    // after a value: ',' or '}'
)

// validatorState is the scalar bookkeeping shared by the validator, the
// chunk splitter, and (conceptually) the streaming machine: whether we are
// inside a string, whether an escape is pending, and one frame per open
// container recording both its kind and its grammar position, so that the
// validator can reject tokens a bracket-depth-only check would miss (a
// trailing comma, a bare value where a key belongs, two back-to-back root
// values).
type validatorState struct {
	inString      bool
	escapePending bool
	consumingKey  bool // the in-progress string is an object key, not a value
	stack         [maxDepth]ctxKind
	frames        [maxDepth]frameState
	depth         int  // number of open contexts, 0..maxDepth
	rootDone      bool // a complete value has been seen at depth 0
}

// Validate runs the C2 lightweight structural validator over input: a
// single left-to-right pass checking bracket/brace matching, string
// termination, escape well-formedness, number grammar, grammar position
// (keys vs values, comma placement), and nesting depth. It does not build
// a value tree and does not validate Unicode content of \uXXXX escapes
// beyond the four-hex-digit shape, nor does it reject non-UTF-8 bytes
// inside strings (spec Open Question 3: pass-through).
func Validate(input []byte) error {
	if len(input) == 0 {
		return newErr(EmptyInput, 0, "zero-length input")
	}
	v := validatorState{}
	_, err := v.run(input, 0)
	if err != nil {
		return err
	}
	if v.inString {
		return newErr(UnterminatedString, int64(len(input)), "EOF inside string literal")
	}
	if v.depth > 0 {
		return newErr(UnbalancedStructure, int64(len(input)), "EOF with open structures")
	}
	if !v.rootDone {
		return newErr(UnbalancedStructure, int64(len(input)), "no value found")
	}
	return nil
}

// run validates input and returns the offset just past the last byte it
// examined. It is also used by the chunk splitter's tests to walk a prefix
// while tracking depth/in-string/escape state at a chunk boundary, so it must
// tolerate a nil error return on a clean EOF mid-structure (callers that
// need full-document validation call Validate, which additionally
// requires depth==0, !inString, and rootDone at EOF).
func (v *validatorState) run(input []byte, base int64) (int, error) {
	i := 0
	n := len(input)
	for i < n {
		c := input[i]

		if v.escapePending {
			if err := v.checkEscapeChar(input, i, base); err != nil {
				return i, err
			}
			v.escapePending = false
			i++
			continue
		}

		if v.inString {
			switch {
			case c == '\\':
				v.escapePending = true
				i++
			case c == '"':
				v.inString = false
				i++
				v.completeValue(v.consumingKey)
				v.consumingKey = false
			case c < 0x20:
				return i, newErr(UnexpectedCharacter, base+int64(i), "unescaped control character in string")
			default:
				i++
			}
			continue
		}

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}

		switch c {
		case '"':
			if err := v.expectValueOrKey(c, base+int64(i)); err != nil {
				return i, err
			}
			v.inString = true
			i++
		case '{', '[':
			if err := v.expectValueOrKey(c, base+int64(i)); err != nil {
				return i, err
			}
			if v.depth >= maxDepth {
				return i, newErr(MaxDepthExceeded, base+int64(i), "nesting exceeds limit")
			}
			if c == '{' {
				v.stack[v.depth] = ctxObject
				v.frames[v.depth] = objEmptyOrKey
			} else {
				v.stack[v.depth] = ctxArray
				v.frames[v.depth] = arrEmptyOrValue
			}
			v.depth++
			i++
		case '}', ']':
			if err := v.expectClose(c, base+int64(i)); err != nil {
				return i, err
			}
			v.depth--
			i++
			v.completeValue(false)
		case ':':
			if v.depth == 0 || v.stack[v.depth-1] != ctxObject || v.frames[v.depth-1] != objColon {
				return i, newErr(UnexpectedCharacter, base+int64(i), "unexpected ':'")
			}
			v.frames[v.depth-1] = objValue
			i++
		case ',':
			if v.depth == 0 {
				return i, newErr(UnexpectedCharacter, base+int64(i), "unexpected ',' outside any container")
			}
			switch v.frames[v.depth-1] {
			case arrCommaOrClose:
				v.frames[v.depth-1] = arrValue
			case objCommaOrClose:
				v.frames[v.depth-1] = objKey
			default:
				return i, newErr(UnexpectedCharacter, base+int64(i), "unexpected ',' (trailing comma or missing value)")
			}
			i++
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if err := v.expectValueOrKey(c, base+int64(i)); err != nil {
				return i, err
			}
			adv, err := validateNumber(input[i:])
			if err != nil {
				return i, offsetErr(err, base+int64(i))
			}
			i += adv
			v.completeValue(false)
		case 't':
			if err := v.consumeLiteral(input, &i, "true", base); err != nil {
				return i, err
			}
		case 'f':
			if err := v.consumeLiteral(input, &i, "false", base); err != nil {
				return i, err
			}
		case 'n':
			if err := v.consumeLiteral(input, &i, "null", base); err != nil {
				return i, err
			}
		default:
			return i, newErr(UnexpectedCharacter, base+int64(i), "byte not permitted by JSON grammar")
		}
	}
	return i, nil
}

func (v *validatorState) consumeLiteral(input []byte, i *int, lit string, base int64) error {
	if err := v.expectValueOrKey(lit[0], base+int64(*i)); err != nil {
		return err
	}
	adv, err := matchLiteral(input[*i:], lit)
	if err != nil {
		return offsetErr(err, base+int64(*i))
	}
	*i += adv
	v.completeValue(false)
	return nil
}

// expectValueOrKey checks whether a value-starting byte c is grammatically
// legal at the current position, given root/array/object context. Only
// '"' is ever legal where an object key is expected.
func (v *validatorState) expectValueOrKey(c byte, at int64) error {
	if v.depth == 0 {
		if v.rootDone {
			return newErr(UnexpectedCharacter, at, "content after the document's single root value")
		}
		return nil
	}
	switch v.stack[v.depth-1] {
	case ctxArray:
		switch v.frames[v.depth-1] {
		case arrEmptyOrValue, arrValue:
			return nil
		default:
			return newErr(UnexpectedCharacter, at, "expected ',' or ']'")
		}
	default: // ctxObject
		switch v.frames[v.depth-1] {
		case objEmptyOrKey, objKey:
			if c != '"' {
				return newErr(UnexpectedCharacter, at, "expected string key")
			}
			v.consumingKey = true
			return nil
		case objValue:
			return nil
		default:
			return newErr(UnexpectedCharacter, at, "expected ':' , ',' or '}'")
		}
	}
}

// expectClose checks whether a closing byte c is grammatically legal
// (not right after a comma, and matching the open container's kind).
func (v *validatorState) expectClose(c byte, at int64) error {
	if v.depth == 0 {
		return newErr(UnbalancedStructure, at, "closer without matching opener")
	}
	top := v.depth - 1
	want := ctxObject
	if c == ']' {
		want = ctxArray
	}
	if v.stack[top] != want {
		return newErr(UnbalancedStructure, at, "mismatched closer")
	}
	switch v.stack[top] {
	case ctxArray:
		if v.frames[top] == arrValue {
			return newErr(UnexpectedCharacter, at, "expected a value, not ']' (trailing comma)")
		}
	default:
		if v.frames[top] == objKey || v.frames[top] == objValue || v.frames[top] == objColon {
			return newErr(UnexpectedCharacter, at, "expected a key/value, not '}' (trailing comma or missing value)")
		}
	}
	return nil
}

// completeValue records that a value (or, if isKey, an object key) has
// just finished at the current nesting level, advancing the parent
// frame's grammar state accordingly.
func (v *validatorState) completeValue(isKey bool) {
	if v.depth == 0 {
		v.rootDone = true
		return
	}
	top := v.depth - 1
	if isKey {
		v.frames[top] = objColon
		return
	}
	switch v.stack[top] {
	case ctxArray:
		v.frames[top] = arrCommaOrClose
	default:
		v.frames[top] = objCommaOrClose
	}
}

func offsetErr(err error, at int64) error {
	if e, ok := err.(*Error); ok {
		e.Offset = at
		return e
	}
	return err
}

func (v *validatorState) checkEscapeChar(input []byte, i int, base int64) error {
	c := input[i]
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return nil
	case 'u':
		if i+4 >= len(input) {
			return newErr(InvalidEscape, base+int64(i), "truncated \\u escape")
		}
		for j := 1; j <= 4; j++ {
			if !isHexDigit(input[i+j]) {
				return newErr(InvalidEscape, base+int64(i+j), "non-hex digit in \\u escape")
			}
		}
		return nil
	default:
		return newErr(InvalidEscape, base+int64(i), "unrecognized escape character")
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// validateNumber matches the JSON number grammar at the start of buf and
// returns the number of bytes consumed.
//
//	number  = [ "-" ] int [ frac ] [ exp ]
//	int     = "0" / digit1-9 *digit
//	frac    = "." 1*digit
//	exp     = ("e" / "E") [ "+" / "-" ] 1*digit
func validateNumber(buf []byte) (int, error) {
	i := 0
	n := len(buf)
	if i < n && buf[i] == '-' {
		i++
	}
	if i >= n || !isDigit(buf[i]) {
		return i, newErr(InvalidNumber, 0, "expected digit")
	}
	if buf[i] == '0' {
		i++
	} else {
		for i < n && isDigit(buf[i]) {
			i++
		}
	}
	if i < n && buf[i] == '.' {
		i++
		start := i
		for i < n && isDigit(buf[i]) {
			i++
		}
		if i == start {
			return i, newErr(InvalidNumber, 0, "expected digit after decimal point")
		}
	}
	if i < n && (buf[i] == 'e' || buf[i] == 'E') {
		i++
		if i < n && (buf[i] == '+' || buf[i] == '-') {
			i++
		}
		start := i
		for i < n && isDigit(buf[i]) {
			i++
		}
		if i == start {
			return i, newErr(InvalidNumber, 0, "expected digit in exponent")
		}
	}
	return i, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func matchLiteral(buf []byte, lit string) (int, error) {
	if len(buf) < len(lit) || string(buf[:len(lit)]) != lit {
		return 0, newErr(UnexpectedCharacter, 0, "expected literal "+lit)
	}
	return len(lit), nil
}
