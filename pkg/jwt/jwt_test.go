package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "siti", "Siti Rahma", "1060", []string{"uploader"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "siti", claims.Username)
	assert.Equal(t, "1060", claims.BranchBa)
	assert.Equal(t, []string{"uploader"}, claims.Roles)
	assert.Equal(t, "go-mt-distribution", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ValidateToken(in)
		assert.ErrorIs(t, err, ErrInvalidToken, "%q", in)
	}
}

func TestValidateTokenRejectsTamperedSignature(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "siti", "Siti Rahma", "1060", nil)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
