package transport

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShort(t *testing.T) {
	assert.Equal(t, []string{"hello"}, SplitText("hello", 10))
	assert.Equal(t, []string{""}, SplitText("", 10))
	assert.Equal(t, []string{"anything"}, SplitText("anything", 0))
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	chunks := SplitText("line one\nline two\nline three", 20)
	assert.Equal(t, []string{"line one\nline two", "line three"}, chunks)
}

func TestSplitTextHardCut(t *testing.T) {
	chunks := SplitText(strings.Repeat("₹", 25), 10)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Equal(t, strings.Repeat("₹", 25), strings.Join(chunks, ""))
}
