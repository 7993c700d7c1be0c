package app

import (
	"fmt"
	"log/slog"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/cryptox"
)

// InitTokenConfig builds the issuer configuration from cfg. In dev, missing
// secrets are replaced by random per-process ones, so tokens do not survive
// a restart.
func InitTokenConfig(cfg Config, logger *slog.Logger) (service.TokenConfig, error) {
	access, refresh := cfg.AccessSecret, cfg.RefreshSecret

	if access == "" || refresh == "" {
		if !cfg.IsDev() {
			return service.TokenConfig{}, fmt.Errorf("%w: token secrets are required outside dev", service.ErrInvalidTokenConfig)
		}
		var err error
		if access == "" {
			if access, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
				return service.TokenConfig{}, err
			}
		}
		if refresh == "" {
			if refresh, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
				return service.TokenConfig{}, err
			}
		}
		logger.Warn("token secrets not configured, using random per-process secrets")
	}

	return service.TokenConfig{
		Issuer:        cfg.Issuer,
		AccessSecret:  []byte(access),
		RefreshSecret: []byte(refresh),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, nil
}

// InitCipher selects the refresh token cipher:
//   - CIPHER_KEY + CIPHER_IV: hex key material used as is
//   - CIPHER_PASSPHRASE + CIPHER_SALT: key material derived with PBKDF2
//   - neither (dev only): random key material, every session dies on restart
func InitCipher(cfg Config, logger *slog.Logger) (*cryptox.Cipher, error) {
	switch {
	case cfg.CipherKey != "":
		c, err := cryptox.ParseCipher(cfg.CipherKey, cfg.CipherIV)
		if err != nil {
			return nil, fmt.Errorf("parse cipher key: %w", err)
		}
		logger.Info("refresh token cipher loaded", "source", "key")
		return c, nil
	case cfg.CipherPassphrase != "":
		c, err := cryptox.DeriveCipher(cfg.CipherPassphrase, cfg.CipherSalt)
		if err != nil {
			return nil, fmt.Errorf("derive cipher key: %w", err)
		}
		logger.Info("refresh token cipher loaded", "source", "passphrase")
		return c, nil
	case cfg.IsDev():
		logger.Warn("cipher not configured, using a random key; sessions will not survive a restart")
		return cryptox.RandomCipher()
	default:
		return nil, fmt.Errorf("refresh token cipher is not configured")
	}
}

// InitHasher selects the password hasher. argon2id reads (or creates) the
// pepper file.
func InitHasher(cfg Config, logger *slog.Logger) (cryptox.Hasher, error) {
	if cfg.PasswordHasher == "bcrypt" {
		logger.Info("password hasher selected", "algorithm", "bcrypt")
		return cryptox.Bcrypt{}, nil
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("load pepper: %w", err)
	}
	logger.Info("password hasher selected", "algorithm", "argon2id", "pepper_file", cfg.PepperFile)
	return cryptox.Argon2id{Pepper: pepper}, nil
}
