package sanitizex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSingleLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trim", input: "  hello world  ", expected: "hello world"},
		{name: "collapse", input: "hello    world", expected: "hello world"},
		{name: "newlines and tabs", input: "hello\n\tworld", expected: "hello world"},
		{name: "del char", input: "a\u007fb", expected: "a b"},
		{name: "arabic kept", input: " متجر  أحمد ", expected: "متجر أحمد"},
		{name: "nfc", input: "e\u0301", expected: "\u00e9"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, CleanSingleLine(tt.input))
		})
	}
}

func TestCleanMultiline(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line one\nline two", CleanMultiline("  line one  \r\n line two\x00 "))
	assert.Equal(t, "", CleanMultiline(""))
}

func TestEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane@example.com", Email("  Jane@Example.COM "))
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "my id card.pdf", expected: "my_id_card.pdf"},
		{input: "../../etc/passwd", expected: "passwd"},
		{input: `C:\Users\me\scan 1.png`, expected: "scan_1.png"},
		{input: "", expected: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FileName(tt.input))
		})
	}
}
