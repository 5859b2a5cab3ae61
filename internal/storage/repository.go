package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cryptofolio/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db            *sql.DB
	queries       *Queries
	schemaVersion uint
}

// DSN adds the connection pragmas every connection needs.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Database schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:            db,
		queries:       New(db),
		schemaVersion: version,
	}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to core.ErrNotFound.
func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, id, core.ErrNotFound)
	}
	return err
}

func affected(n int64, err error, what string, id int64) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, core.ErrNotFound)
	}
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	core.DateLayout,
}

// parseTimestamp reads SQLite CURRENT_TIMESTAMP values and RFC3339 strings.
// Unparseable values come back as the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Users

func toCoreUser(u User) core.User {
	return core.User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: parseTimestamp(u.CreatedAt)}
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	row, err := r.queries.CreateUser(ctx, CreateUserParams{Username: u.Username, Email: u.Email})
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", row.ID, "username", row.Username)
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", notFound(err, "user", id))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", notFound(err, "user", email))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, id int64, upd core.UserUpdate) (core.User, error) {
	if err := upd.Validate(); err != nil {
		return core.User{}, err
	}
	row, err := r.queries.UpdateUser(ctx, UpdateUserParams{
		Username: nullString(upd.Username),
		Email:    nullString(upd.Email),
		ID:       id,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", notFound(err, "user", id))
	}
	return toCoreUser(row), nil
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteUser(ctx, id)
	if err := affected(n, err, "user", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// EnsureUser returns the user with u.Email, creating it when missing.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, u core.User) (core.User, error) {
	existing, err := r.GetUserByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}
	return r.CreateUser(ctx, u)
}

// Portfolios

func toCorePortfolio(p Portfolio) core.Portfolio {
	return core.Portfolio{ID: p.ID, UserID: p.UserID, Name: p.Name, CreatedAt: parseTimestamp(p.CreatedAt)}
}

func toCorePortfolios(rows []Portfolio) []core.Portfolio {
	out := make([]core.Portfolio, 0, len(rows))
	for _, p := range rows {
		out = append(out, toCorePortfolio(p))
	}
	return out
}

func (r *SQLiteRepository) CreatePortfolio(ctx context.Context, p core.Portfolio) (core.Portfolio, error) {
	if err := p.Validate(); err != nil {
		return core.Portfolio{}, err
	}
	row, err := r.queries.CreatePortfolio(ctx, CreatePortfolioParams{UserID: p.UserID, Name: p.Name})
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("create portfolio: %w", err)
	}
	slog.InfoContext(ctx, "Portfolio created", "id", row.ID, "user_id", row.UserID, "name", row.Name)
	return toCorePortfolio(row), nil
}

func (r *SQLiteRepository) GetPortfolio(ctx context.Context, id int64) (core.Portfolio, error) {
	row, err := r.queries.GetPortfolio(ctx, id)
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("get portfolio: %w", notFound(err, "portfolio", id))
	}
	return toCorePortfolio(row), nil
}

func (r *SQLiteRepository) ListPortfolios(ctx context.Context, userID int64) ([]core.Portfolio, error) {
	rows, err := r.queries.ListPortfoliosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	return toCorePortfolios(rows), nil
}

func (r *SQLiteRepository) ListAllPortfolios(ctx context.Context) ([]core.Portfolio, error) {
	rows, err := r.queries.ListPortfolios(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all portfolios: %w", err)
	}
	return toCorePortfolios(rows), nil
}

// GetOrCreatePortfolios lists the user's portfolios, creating the default
// one first when the user has none.
func (r *SQLiteRepository) GetOrCreatePortfolios(ctx context.Context, userID int64) ([]core.Portfolio, error) {
	if _, err := r.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	var out []Portfolio
	err := r.withTx(ctx, func(q *Queries) error {
		rows, err := q.ListPortfoliosByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list portfolios: %w", err)
		}
		if len(rows) == 0 {
			created, err := q.CreatePortfolio(ctx, CreatePortfolioParams{UserID: userID, Name: core.DefaultPortfolioName})
			if err != nil {
				return fmt.Errorf("create default portfolio: %w", err)
			}
			rows = append(rows, created)
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCorePortfolios(out), nil
}

func (r *SQLiteRepository) RenamePortfolio(ctx context.Context, id int64, name string) (core.Portfolio, error) {
	if err := core.ValidateName(name); err != nil {
		return core.Portfolio{}, err
	}
	row, err := r.queries.RenamePortfolio(ctx, RenamePortfolioParams{Name: name, ID: id})
	if err != nil {
		return core.Portfolio{}, fmt.Errorf("rename portfolio: %w", notFound(err, "portfolio", id))
	}
	return toCorePortfolio(row), nil
}

func (r *SQLiteRepository) DeletePortfolio(ctx context.Context, id int64) error {
	n, err := r.queries.DeletePortfolio(ctx, id)
	if err := affected(n, err, "portfolio", id); err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	return nil
}
