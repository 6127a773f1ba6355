package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTPLength(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		code := GenerateOTP(n)
		assert.Len(t, code, n)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "otp harus angka semua: %q", code)
		}
	}
}

func TestGenerateOTPDefaultLength(t *testing.T) {
	assert.Len(t, GenerateOTP(0), 6)
	assert.Len(t, GenerateOTP(-1), 6)
}
