package zmin

import (
	"strings"
	"testing"
)

func TestValidateValid(t *testing.T) {
	tests := []string{
		`{ "a" : 1 , "b" : [ 2 , 3 ] }`,
		`{"s":"a \t b"}`,
		`[
		  "\"quoted\"",
		  "a\\b"
		]`,
		`"é"`,
		`{}`,
		`[]`,
		`null`,
		`true`,
		`false`,
		`-1.5e+10`,
		`0`,
		`0.5`,
		`{"a":1,"b":{"c":[1,2,3]},"d":null}`,
	}
	for _, in := range tests {
		if err := Validate([]byte(in)); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", in, err)
		}
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{"empty", "", EmptyInput},
		{"trailing comma", `{"a":1,}`, UnexpectedCharacter},
		{"unbalanced", `[1, 2`, UnbalancedStructure},
		{"stray closer", `]`, UnbalancedStructure},
		{"mismatched closer", `[1, 2}`, UnbalancedStructure},
		{"unterminated string", `{"a": "b`, UnterminatedString},
		{"bad number", `{"a": 1.}`, InvalidNumber},
		{"bad number leading zero", `01`, UnexpectedCharacter},
		{"bad escape", `"\q"`, InvalidEscape},
		{"bad unicode escape", `"\u00G1"`, InvalidEscape},
		{"bad literal", `{"a": tru}`, UnexpectedCharacter},
		{"control char in string", "\"a\nb\"", UnexpectedCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.in))
			if err == nil {
				t.Fatalf("Validate(%q) = nil, want error", tt.in)
			}
			zerr, ok := err.(*Error)
			if !ok {
				t.Fatalf("error is not *Error: %v", err)
			}
			if zerr.Kind != tt.kind {
				t.Errorf("Validate(%q) kind = %v, want %v", tt.in, zerr.Kind, tt.kind)
			}
		})
	}
}

func TestValidateDepthLimit(t *testing.T) {
	var okDepth strings.Builder
	for i := 0; i < maxDepth; i++ {
		okDepth.WriteByte('[')
	}
	for i := 0; i < maxDepth; i++ {
		okDepth.WriteByte(']')
	}
	if err := Validate([]byte(okDepth.String())); err != nil {
		t.Errorf("depth %d should be accepted: %v", maxDepth, err)
	}

	var tooDeep strings.Builder
	for i := 0; i < maxDepth+1; i++ {
		tooDeep.WriteByte('[')
	}
	for i := 0; i < maxDepth+1; i++ {
		tooDeep.WriteByte(']')
	}
	err := Validate([]byte(tooDeep.String()))
	if err == nil {
		t.Fatal("depth 65 should be rejected")
	}
	if zerr := err.(*Error); zerr.Kind != MaxDepthExceeded {
		t.Errorf("kind = %v, want MaxDepthExceeded", zerr.Kind)
	}
}
