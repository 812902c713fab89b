package account_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pssiii/marketing-backend/internal/account"
)

func TestNewVerificationToken(t *testing.T) {
	tok, err := account.NewVerificationToken()
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err, "token must be URL-safe base64")
	assert.Len(t, raw, 32)

	other, err := account.NewVerificationToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
