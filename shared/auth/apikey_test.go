package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyGenerateAndVerify(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")

	raw, signed, lookup, err := signer.Generate()
	require.NoError(t, err)

	assert.NotEmpty(t, raw)
	assert.NotEqual(t, raw, signed, "raw key must differ from the stored token")
	assert.NotEqual(t, raw, lookup)
	assert.NotContains(t, lookup, raw)

	recovered, err := signer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, raw, recovered)
}

func TestAPIKeyVerifyRejectsTampering(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")

	_, signed, _, err := signer.Generate()
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = signer.Verify(tampered)
	assert.Error(t, err)

	_, err = signer.Verify("not-a-token")
	assert.Error(t, err)
}

func TestAPIKeyVerifyRejectsForeignKey(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")
	other := NewAPIKeySigner("another-secret-key-base")

	_, signed, _, err := other.Generate()
	require.NoError(t, err)

	_, err = signer.Verify(signed)
	assert.Error(t, err, "tokens signed under a different server key must fail")
}

func TestLookupDigestDeterministic(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")

	assert.Equal(t, signer.LookupDigest("abc"), signer.LookupDigest("abc"))
	assert.NotEqual(t, signer.LookupDigest("abc"), signer.LookupDigest("abd"))

	other := NewAPIKeySigner("another-secret-key-base")
	assert.NotEqual(t, signer.LookupDigest("abc"), other.LookupDigest("abc"))
}

func TestGeneratedKeysAreUnique(t *testing.T) {
	signer := NewAPIKeySigner("test-secret-key-base")

	raw1, _, _, err := signer.Generate()
	require.NoError(t, err)
	raw2, _, _, err := signer.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, raw1, raw2)
}
