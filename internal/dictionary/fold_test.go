package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii upper", in: "MAR", want: "mar"},
		{name: "mixed case", in: "Tree", want: "tree"},
		{name: "malayalam unchanged", in: "മരം", want: "മരം"},
		{name: "full folding", in: "Straße", want: "strasse"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "Mar", want: "%mar%"},
		{name: "regex metacharacters are literal", in: "a.b", want: "%a.b%"},
		{name: "parenthesis", in: "(", want: "%(%"},
		{name: "percent escaped", in: "50%", want: "%50!%%"},
		{name: "underscore escaped", in: "a_b", want: "%a!_b%"},
		{name: "escape char escaped", in: "x!y", want: "%x!!y%"},
		{name: "malayalam", in: "മര", want: "%മര%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPattern(tt.in))
		})
	}
}
