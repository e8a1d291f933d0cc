package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ Repo = (*SQLRepo)(nil)

type dialect struct {
	driver string
	ddl    string
	get    string
	upsert string
	delete string
	purge  string
	// stamp converts a time into the value stored in updated_at
	stamp func(time.Time) any
}

// sqliteTime matches the layout of CURRENT_TIMESTAMP so stamps compare as text
const sqliteTime = "2006-01-02 15:04:05"

var sqliteDialect = dialect{
	driver: "sqlite",
	ddl: `CREATE TABLE IF NOT EXISTS tab_tokens (
		tab_id     TEXT NOT NULL,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tab_id, name)
	)`,
	get: `SELECT value FROM tab_tokens WHERE tab_id = ? AND name = ?`,
	upsert: `INSERT INTO tab_tokens (tab_id, name, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (tab_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	delete: `DELETE FROM tab_tokens WHERE tab_id = ? AND name = ?`,
	purge:  `DELETE FROM tab_tokens WHERE updated_at < ?`,
	stamp:  func(t time.Time) any { return t.UTC().Format(sqliteTime) },
}

var postgresDialect = dialect{
	driver: "pgx",
	ddl: `CREATE TABLE IF NOT EXISTS tab_tokens (
		tab_id     TEXT NOT NULL,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (tab_id, name)
	)`,
	get: `SELECT value FROM tab_tokens WHERE tab_id = $1 AND name = $2`,
	upsert: `INSERT INTO tab_tokens (tab_id, name, value, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (tab_id, name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	delete: `DELETE FROM tab_tokens WHERE tab_id = $1 AND name = $2`,
	purge:  `DELETE FROM tab_tokens WHERE updated_at < $1`,
	stamp:  func(t time.Time) any { return t.UTC() },
}

// SQLRepo stores tokens in a tab_tokens table (SQLite or Postgres)
type SQLRepo struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLiteRepo opens (creating if needed) the SQLite database at path
func NewSQLiteRepo(ctx context.Context, path string) (*SQLRepo, error) {
	if path == "" {
		path = "tokens.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("[tokenstore NewSQLiteRepo] create dirs: %w", err)
	}
	return openSQL(ctx, sqliteDialect, path)
}

// NewPostgresRepo connects with a postgres:// DSN through pgx
func NewPostgresRepo(ctx context.Context, dsn string) (*SQLRepo, error) {
	return openSQL(ctx, postgresDialect, dsn)
}

func openSQL(ctx context.Context, d dialect, dsn string) (*SQLRepo, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("[tokenstore] open %s: %w", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[tokenstore] ping %s: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[tokenstore] create tab_tokens table: %w", err)
	}
	return &SQLRepo{db: db, dialect: d}, nil
}

func (r *SQLRepo) Get(ctx context.Context, tabID string) (string, error) {
	if tabID == "" {
		return "", fmt.Errorf("tabID is required")
	}
	var token string
	err := r.db.QueryRowContext(ctx, r.dialect.get, tabID, Key).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrTokenNotFound
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "[tokenstore Get]")
	}
	return token, nil
}

func (r *SQLRepo) Set(ctx context.Context, tabID, token string) error {
	if tabID == "" {
		return fmt.Errorf("tabID is required")
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.upsert, tabID, Key, token, r.dialect.stamp(NowTimeFunc())); err != nil {
		return apperrors.Wrapf(err, "[tokenstore Set]")
	}
	return nil
}

func (r *SQLRepo) Delete(ctx context.Context, tabID string) error {
	if tabID == "" {
		return fmt.Errorf("tabID is required")
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.delete, tabID, Key); err != nil {
		return apperrors.Wrapf(err, "[tokenstore Delete]")
	}
	return nil
}

func (r *SQLRepo) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.purge, r.dialect.stamp(olderThan))
	if err != nil {
		return 0, apperrors.Wrapf(err, "[tokenstore Purge]")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrapf(err, "[tokenstore Purge] rows affected")
	}
	return int(n), nil
}

func (r *SQLRepo) Close() error {
	return r.db.Close()
}
