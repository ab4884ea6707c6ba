package stringutils_test

import (
	"testing"

	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", stringutils.Truncate("hello", 5, "..."))
	assert.Equal(t, "he...", stringutils.Truncate("hello", 2, "..."))
	assert.Equal(t, "안녕...", stringutils.Truncate("안녕하세요", 2, "..."))
	assert.Equal(t, "", stringutils.Head("abc", 0))
	assert.Equal(t, "abc", stringutils.Head("abc", 10))
}
