package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("pass1")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword("pass1", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_Salts_Differ(t *testing.T) {
	req := require.New(t)

	hash1, err := HashPassword("pass1")
	req.NoError(err)
	hash2, err := HashPassword("pass1")
	req.NoError(err)

	req.NotEqual(hash1, hash2)
}

func TestComparePassword_Malformed_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("pass1", "not-a-hash")
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name    string
		request RegisterRequest
		valid   bool
	}{
		{name: "valid", request: RegisterRequest{Username: "newuser", Password: "secret1"}, valid: true},
		{name: "username too short", request: RegisterRequest{Username: "ab", Password: "secret1"}, valid: false},
		{name: "username not alphanumeric", request: RegisterRequest{Username: "new user", Password: "secret1"}, valid: false},
		{name: "password too short", request: RegisterRequest{Username: "newuser", Password: "abc"}, valid: false},
		{name: "missing password", request: RegisterRequest{Username: "newuser"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.request)
			if tt.valid {
				req.NoError(err)
			} else {
				req.Error(err)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateLogin(LoginRequest{Username: "abc", Password: "pass1"}))
	req.Error(ValidateLogin(LoginRequest{Username: "", Password: "pass1"}))
	req.Error(ValidateLogin(LoginRequest{Username: "abc", Password: ""}))
}
