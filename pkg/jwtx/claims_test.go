package jwtx_test

import (
	"testing"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "bloggers",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("bloggers"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := jwtx.NewClaims("u1", "d1", "bloggers", time.Minute, now)

	tests := []struct {
		name string
		at   time.Time
		want error
	}{
		{"at issue", now, nil},
		{"just before expiry", now.Add(time.Minute - time.Second), nil},
		{"at expiry", now.Add(time.Minute), jwtx.ErrExpired},
		{"before nbf", now.Add(-time.Second), jwtx.ErrNotYetValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateExpiry(tt.at)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewClaims_UniqueJTI(t *testing.T) {
	now := time.Now()
	a := jwtx.NewClaims("u1", "d1", "", time.Minute, now)
	b := jwtx.NewClaims("u1", "d1", "", time.Minute, now)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, "u1", a.Subject)
}

func TestUnverified(t *testing.T) {
	s, err := jwtx.NewHS256Signer([]byte("0123456789abcdef"))
	require.NoError(t, err)

	now := time.Now().Truncate(time.Second)
	tok, err := s.Sign(jwtx.NewClaims("u1", "d1", "bloggers", time.Hour, now))
	require.NoError(t, err)

	c, err := jwtx.Unverified(tok)
	require.NoError(t, err)
	require.Equal(t, "d1", c.DeviceID)
	require.True(t, c.ExpiresAt.Time.Equal(now.Add(time.Hour)))

	_, err = jwtx.Unverified("not-a-token")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
