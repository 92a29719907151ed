package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlank(t *testing.T) {
	assert.True(t, Blank(""))
	assert.True(t, Blank(" \t\n"))
	assert.False(t, Blank(" x "))
}

func TestAllPresent(t *testing.T) {
	assert.True(t, AllPresent("a", "b"))
	assert.False(t, AllPresent("a", "  "))
	assert.True(t, AllPresent())
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "b", FirstNonBlank("", "  ", " b ", "c"))
	assert.Equal(t, "", FirstNonBlank(" ", ""))
}
