package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIsDeterministic(t *testing.T) {
	svc := NewService("test-key")

	uid1, err := svc.Derive("123456789012")
	require.NoError(t, err)
	uid2, err := svc.Derive("123456789012")
	require.NoError(t, err)

	assert.Equal(t, uid1, uid2)
	assert.Len(t, uid1, 64)
}

func TestDeriveNormalizesFormatting(t *testing.T) {
	svc := NewService("test-key")

	plain, err := svc.Derive("123456789012")
	require.NoError(t, err)

	spaced, err := svc.Derive("1234 5678 9012")
	require.NoError(t, err)
	dashed, err := svc.Derive("1234-5678-9012")
	require.NoError(t, err)

	assert.Equal(t, plain, spaced)
	assert.Equal(t, plain, dashed)
}

func TestDeriveDistinctInputs(t *testing.T) {
	svc := NewService("test-key")

	uid1, err := svc.Derive("123456789012")
	require.NoError(t, err)
	uid2, err := svc.Derive("123456789013")
	require.NoError(t, err)

	assert.NotEqual(t, uid1, uid2)
}

func TestDeriveKeyDependence(t *testing.T) {
	uid1, err := NewService("key-one").Derive("123456789012")
	require.NoError(t, err)
	uid2, err := NewService("key-two").Derive("123456789012")
	require.NoError(t, err)

	assert.NotEqual(t, uid1, uid2)
}

func TestDeriveRejectsMalformedInput(t *testing.T) {
	svc := NewService("test-key")

	for _, input := range []string{
		"",
		"12345678901",
		"1234567890123",
		"12345678901a",
		"1234 5678 901",
		"abcdefghijkl",
	} {
		_, err := svc.Derive(input)
		assert.Error(t, err, "input %q should be rejected", input)
	}
}

func TestVerify(t *testing.T) {
	svc := NewService("test-key")

	uid, err := svc.Derive("123456789012")
	require.NoError(t, err)

	assert.True(t, svc.Verify("123456789012", uid))
	assert.True(t, svc.Verify("1234 5678 9012", uid))
	assert.False(t, svc.Verify("123456789013", uid))
	assert.False(t, svc.Verify("not-a-number", uid))
}
