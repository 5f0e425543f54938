package pin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ticket-kiosk/pin"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		pin  string
		want bool
	}{
		{"four digits", "1234", true},
		{"leading zeros", "0000", true},
		{"too short", "123", false},
		{"too long", "12345", false},
		{"letters", "12ab", false},
		{"empty", "", false},
		{"whitespace", " 123", false},
		{"unicode digits", "１２３４", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pin.Valid(tt.pin))
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	// GIVEN: A hashed PIN
	// WHEN: Verifying correct and wrong attempts
	// THEN: Only the exact PIN verifies

	hash, err := pin.Hash("4321")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, pin.Verify(hash, "4321"))
	assert.False(t, pin.Verify(hash, "1234"))
	assert.False(t, pin.Verify(hash, ""))
}

func TestHash_NotReversible(t *testing.T) {
	// The stored value must not contain the PIN itself in any form.
	hash, err := pin.Hash("9876")
	require.NoError(t, err)

	assert.NotContains(t, hash, "9876")
	assert.NotEqual(t, "9876", hash)
}

func TestHash_DifferentSalts(t *testing.T) {
	// Two hashes of the same PIN differ, but both verify.
	h1, err := pin.Hash("1111")
	require.NoError(t, err)
	h2, err := pin.Hash("1111")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, pin.Verify(h1, "1111"))
	assert.True(t, pin.Verify(h2, "1111"))
}
