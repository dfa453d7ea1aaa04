package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateUserToken(userID, testSecret, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseUserToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseRejectsMissingToken(t *testing.T) {
	_, err := ParseUserToken("", testSecret)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateUserToken(uuid.New(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseUserToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateUserToken(uuid.New(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseUserToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseUserToken("not.a.token", testSecret)
	assert.Error(t, err)
}
