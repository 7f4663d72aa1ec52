package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  hello  world  ", "hello world"},
		{"Hello\tWorld", "hello world"},
		{"a\n b\n\nc", "a b c"},
		{"YES", "yes"},
		{"1 2  3\r\n", "1 2 3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "  A  b\tC ", "x\ny\nz", "already normal"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestOutputsMatchIgnoresFormatting(t *testing.T) {
	assert.True(t, outputsMatch("  YES\n", "yes"))
	assert.True(t, outputsMatch("1 2 3", "1  2  3"))
	assert.False(t, outputsMatch("12 3", "1 2 3"))
}
