package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serialises
	// writers, which the refresh rotation relies on.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users             { return &usersRepo{q: s.q} }
func (s *Store) Devices() store.Devices         { return &devicesRepo{q: s.q} }
func (s *Store) Connections() store.Connections { return &connectionsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapAffected turns a zero-row write into ErrNotFound.
func mapAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapConflict translates sqlite UNIQUE violations into store conflicts. The
// driver reports them as "UNIQUE constraint failed: <table>.<column>".
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	idx := strings.Index(msg, "UNIQUE constraint failed: ")
	if idx < 0 {
		return err
	}
	col := msg[idx+len("UNIQUE constraint failed: "):]
	if end := strings.IndexAny(col, " ,("); end >= 0 {
		col = col[:end]
	}
	if dot := strings.LastIndexByte(col, '.'); dot >= 0 {
		col = col[dot+1:]
	}
	return &store.ConflictError{Field: col}
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Login:        row.Login,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    fromMillis(row.CreatedAt),
		EmailConfirmation: domain.EmailConfirmation{
			Code:        row.ConfirmationCode,
			ExpiresAt:   fromMillis(row.ConfirmationExpiresAt),
			IsConfirmed: row.IsConfirmed,
		},
		PasswordRecovery: domain.PasswordRecovery{
			Code:      row.RecoveryCode,
			ExpiresAt: fromMillis(row.RecoveryExpiresAt),
		},
	}
}

func mapDevice(row gen.Device) domain.Device {
	return domain.Device{
		ID:           row.ID,
		UserID:       row.UserID,
		IP:           row.Ip,
		Title:        row.Title,
		RefreshToken: row.RefreshToken,
		CreatedAt:    fromMillis(row.CreatedAt),
		LastActiveAt: fromMillis(row.LastActiveAt),
		ExpiresAt:    fromMillis(row.ExpiresAt),
	}
}
