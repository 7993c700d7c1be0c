package service

import (
	"context"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/cryptox"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/mailx"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	testAccessTTL  = 10 * time.Minute
	testRefreshTTL = 20 * time.Minute
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store   *sqlite.Store
	clock   *clock
	cipher  *cryptox.Cipher
	tokens  *TokenIssuer
	mailer  *mailx.LogSender
	auth    *AuthService
	devices *DeviceService
	users   *UserService
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newTestStore(t)
	clk := &clock{now: epoch}

	cipher, err := cryptox.DeriveCipher("test passphrase", "test salt")
	require.NoError(t, err)

	tokens, err := NewTokenIssuer(TokenConfig{
		Issuer:        "bloggers-test",
		AccessSecret:  []byte("access-secret-0123456789"),
		RefreshSecret: []byte("refresh-secret-0123456789"),
		AccessTTL:     testAccessTTL,
		RefreshTTL:    testRefreshTTL,
		Now:           clk.Now,
	}, cipher, st)
	require.NoError(t, err)

	hasher := cryptox.Argon2id{Pepper: "test-pepper"}
	mailer := &mailx.LogSender{}

	return &fixture{
		store:  st,
		clock:  clk,
		cipher: cipher,
		tokens: tokens,
		mailer: mailer,
		auth: &AuthService{
			Store:     st,
			Tokens:    tokens,
			Hasher:    hasher,
			Mailer:    mailer,
			PublicURL: "https://blogs.example.com",
			Now:       clk.Now,
		},
		devices: &DeviceService{Store: st, Tokens: tokens, Now: clk.Now},
		users:   &UserService{Store: st, Hasher: hasher, Now: clk.Now},
	}
}

var linkCode = regexp.MustCompile(`(?:code|recoveryCode)=([^"&]+)`)

// mailedCode pulls the code out of the last email sent to addr.
func (f *fixture) mailedCode(t *testing.T, addr string) string {
	t.Helper()
	msg, ok := f.mailer.Last(addr)
	require.True(t, ok, "no email sent to %s", addr)
	m := linkCode.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "no code in email body: %s", msg.HTML)
	code, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return code
}

// register creates and confirms a user.
func (f *fixture) register(t *testing.T, login, email, password string) {
	t.Helper()
	ctx := context.Background()
	res := f.auth.RegisterUser(ctx, RegisterInput{Login: login, Email: email, Password: password})
	require.Equal(t, domain.StatusNoContent, res.Status, "register: %v", res.Err)
	res = f.auth.ConfirmEmailByCode(ctx, f.mailedCode(t, email))
	require.Equal(t, domain.StatusNoContent, res.Status, "confirm: %v", res.Err)
}

func (f *fixture) login(t *testing.T, loginOrEmail, password, title string) domain.TokenPair {
	t.Helper()
	res := f.auth.Login(context.Background(), LoginInput{
		LoginOrEmail: loginOrEmail,
		Password:     password,
		DeviceTitle:  title,
		IP:           "203.0.113.7",
	})
	require.Equal(t, domain.StatusSuccess, res.Status, "login: %v", res.Err)
	return res.Data
}
