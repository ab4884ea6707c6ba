package stringslices_test

import (
	"testing"

	"github.com/habiliai/agentloop/internal/stringslices"
	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	words := stringslices.Words("The quick, quick brown fox! Go-lang is ok", 3)
	assert.Equal(t, []string{"the", "quick", "brown", "fox", "lang"}, words)
}

func TestIndexIgnoreCase(t *testing.T) {
	assert.Equal(t, 1, stringslices.IndexIgnoreCase([]string{"coder", "File_Manager"}, "file_manager"))
	assert.Equal(t, -1, stringslices.IndexIgnoreCase([]string{"a"}, "b"))
}
