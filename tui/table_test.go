package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableString(t *testing.T) {
	out := TableString(
		[]string{"HWADDR", "NET", "NODE"},
		[][]string{
			{"00:11:22:33:44:01", "00:00:00:01", "00:11:22:33:44:01"},
			{"00:11:22:33:44:02", "00:00:00:01", "00:11:22:33:44:02"},
		},
	)
	assert.Contains(t, out, "HWADDR")
	assert.Contains(t, out, "00:11:22:33:44:02")
}

func TestMaxWidth(t *testing.T) {
	assert.Equal(t, "short", MaxWidth("short", 10))
	assert.Equal(t, "abcdefg...", MaxWidth("abcdefghijklmnop", 10))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4, " "))
	assert.Equal(t, "abcd", PadRight("abcd", 3, " "))
}
