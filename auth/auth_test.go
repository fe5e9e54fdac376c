package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestCredentialsValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"Valid credentials", Credentials{"test@example.com", "ComplexPass123!"}, false},
		{"Invalid email", Credentials{"notanemail", "ComplexPass123!"}, true},
		{"Password too short", Credentials{"test@example.com", "Short1!"}, true},
		{"Missing digit", Credentials{"test@example.com", "NoDigitPassword!"}, true},
		{"Missing special char", Credentials{"test@example.com", "NoSpecialChar123"}, true},
		{"Missing uppercase", Credentials{"test@example.com", "nouppercase123!"}, true},
		{"Password too long (edge case)", Credentials{"test@example.com", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("uuid-123", "test@example.com", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("uuid-123", claims.UserID)
	req.Equal("test@example.com", claims.Email)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("uuid-123", "test@example.com", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

// BenchmarkHashPassword measures the CPU/RAM cost of the Argon2 parameters.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
