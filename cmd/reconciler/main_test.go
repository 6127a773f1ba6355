package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustAtoi(t *testing.T) {
	assert.Equal(t, 1, mustAtoi("", "1"))
	assert.Equal(t, 8, mustAtoi("8", "1"))
	assert.Equal(t, 1, mustAtoi("bukan-angka", "1"))
}
