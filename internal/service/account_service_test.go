package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 255))
	assert.Equal(t, "abc", truncate("abcdef", 3))

	// "密" 占 3 字节，截断点落在字符中间时退到字符边界
	ua := "a" + strings.Repeat("密", 100)
	got := truncate(ua, 255)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 255)
	assert.Equal(t, 253, len(got))

	assert.Equal(t, "", truncate("密", 2))
}
