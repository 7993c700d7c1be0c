package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/jwtx"
)

var (
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidTokenConfig = errors.New("invalid token config")
)

// TokenKind selects the secret and lifetime a token is issued with.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	switch k {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Cipher encrypts refresh tokens before they are persisted. It must be
// deterministic so a presented token can be compared with the stored one.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenConfig is built once at startup and never mutated afterwards.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (c TokenConfig) validate() error {
	switch {
	case len(c.AccessSecret) == 0 || len(c.RefreshSecret) == 0:
		return fmt.Errorf("%w: secrets must be set", ErrInvalidTokenConfig)
	case bytes.Equal(c.AccessSecret, c.RefreshSecret):
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrInvalidTokenConfig)
	case c.AccessTTL <= 0:
		return fmt.Errorf("%w: access ttl must be positive", ErrInvalidTokenConfig)
	case c.RefreshTTL <= c.AccessTTL:
		return fmt.Errorf("%w: refresh ttl must exceed access ttl", ErrInvalidTokenConfig)
	}
	return nil
}

type tokenKey struct {
	signer   jwtx.Signer
	verifier jwtx.Verifier
	ttl      time.Duration
}

// RefreshBinding is what a verified refresh token resolves to.
type RefreshBinding struct {
	User   domain.User
	Device domain.Device
}

// TokenIssuer mints and checks access and refresh JWTs.
type TokenIssuer struct {
	issuer string
	keys   [2]tokenKey
	cipher Cipher
	store  store.Store
	now    func() time.Time
}

func NewTokenIssuer(cfg TokenConfig, cipher Cipher, st store.Store) (*TokenIssuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cipher == nil {
		return nil, fmt.Errorf("%w: cipher is required", ErrInvalidTokenConfig)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	t := &TokenIssuer{issuer: cfg.Issuer, cipher: cipher, store: st, now: now}

	secrets := [2][]byte{AccessToken: cfg.AccessSecret, RefreshToken: cfg.RefreshSecret}
	ttls := [2]time.Duration{AccessToken: cfg.AccessTTL, RefreshToken: cfg.RefreshTTL}
	for kind, secret := range secrets {
		signer, err := jwtx.NewHS256Signer(secret)
		if err != nil {
			return nil, fmt.Errorf("%s signer: %w", TokenKind(kind), err)
		}
		verifier, err := jwtx.NewHS256Verifier(secret, cfg.Issuer, now)
		if err != nil {
			return nil, fmt.Errorf("%s verifier: %w", TokenKind(kind), err)
		}
		t.keys[kind] = tokenKey{signer: signer, verifier: verifier, ttl: ttls[kind]}
	}
	return t, nil
}

func (t *TokenIssuer) key(kind TokenKind) (tokenKey, error) {
	if kind != AccessToken && kind != RefreshToken {
		return tokenKey{}, fmt.Errorf("unknown token kind %s", kind)
	}
	return t.keys[kind], nil
}

// TTL returns the lifetime of tokens of the given kind.
func (t *TokenIssuer) TTL(kind TokenKind) time.Duration {
	k, err := t.key(kind)
	if err != nil {
		return 0
	}
	return k.ttl
}

// Verifier exposes the verifier for kind, e.g. for the bearer middleware.
func (t *TokenIssuer) Verifier(kind TokenKind) jwtx.Verifier {
	k, err := t.key(kind)
	if err != nil {
		return nil
	}
	return k.verifier
}

// CreateToken signs a token of the given kind for the user and device.
func (t *TokenIssuer) CreateToken(userID, deviceID string, kind TokenKind) (string, error) {
	k, err := t.key(kind)
	if err != nil {
		return "", err
	}
	claims := jwtx.NewClaims(userID, deviceID, t.issuer, k.ttl, t.now())
	token, err := k.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return token, nil
}

// VerifyToken checks signature, issuer and expiry against the secret of kind.
// Any failure is reported as ok == false.
func (t *TokenIssuer) VerifyToken(token string, kind TokenKind) (jwtx.Claims, bool) {
	k, err := t.key(kind)
	if err != nil || token == "" {
		return jwtx.Claims{}, false
	}
	claims, err := k.verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, false
	}
	return claims, true
}

// GenerateTokens issues an access/refresh pair and the ciphertext of the
// refresh token for storage. Nothing is returned if any step fails.
func (t *TokenIssuer) GenerateTokens(userID, deviceID string) (domain.TokenPair, error) {
	access, err := t.CreateToken(userID, deviceID, AccessToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := t.CreateToken(userID, deviceID, RefreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	enc, err := t.cipher.Encrypt(refresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encrypt refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		RefreshCipher: enc,
	}, nil
}

// VerifyRefreshToken resolves a refresh token to its user and device. The
// token must be the one most recently issued for that device; a rotated or
// revoked token yields ErrInvalidRefresh. Storage failures other than
// not-found are returned as-is.
func (t *TokenIssuer) VerifyRefreshToken(ctx context.Context, token string) (RefreshBinding, error) {
	claims, ok := t.VerifyToken(token, RefreshToken)
	if !ok || claims.DeviceID == "" {
		return RefreshBinding{}, ErrInvalidRefresh
	}

	user, err := t.store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		return RefreshBinding{}, notFoundAs(err, ErrInvalidRefresh)
	}
	device, err := t.store.Devices().GetDeviceByID(ctx, claims.DeviceID)
	if err != nil {
		return RefreshBinding{}, notFoundAs(err, ErrInvalidRefresh)
	}
	if device.UserID != user.ID || device.Expired(t.now()) {
		return RefreshBinding{}, ErrInvalidRefresh
	}

	stored, err := t.cipher.Decrypt(device.RefreshToken)
	if err != nil || stored != token {
		return RefreshBinding{}, ErrInvalidRefresh
	}
	return RefreshBinding{User: user, Device: device}, nil
}

// notFoundAs swaps store.ErrNotFound for sentinel and passes other errors on.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, store.ErrNotFound) {
		return sentinel
	}
	return err
}
