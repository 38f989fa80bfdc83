package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(ResetTokenBytes)
	require.NoError(t, err)
	require.Len(t, a, 64)

	b, err := GenerateToken(ResetTokenBytes)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashToken("abc"))
}

func TestConstantTimeEqual(t *testing.T) {
	require.True(t, ConstantTimeEqual("s3cret", "s3cret"))
	require.False(t, ConstantTimeEqual("s3cret", "s3cre"))
	require.False(t, ConstantTimeEqual("", "x"))
}
