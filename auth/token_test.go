package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken_Roundtrip(t *testing.T) {
	req := require.New(t)

	// When a token is generated for a user
	token, err := GenerateToken("abc", "user", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	// Then validation yields the same identity
	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("abc", claims.Username)
	req.Equal("user", claims.Role)
	req.Equal("termchat", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("abc", "user", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("not.a.token")
	req.Error(err)
}
