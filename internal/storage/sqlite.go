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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"

	_ "modernc.org/sqlite"
)

// Fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository owns the connection to the local transaction database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository opens (creating if needed) and migrates the database at dbPath.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("sqlite repository ready", "db_path", dbPath)
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Close releases the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Source returns the collection for one transaction kind.
func (r *SQLiteRepository) Source(kind models.Kind) *SQLiteSource {
	return &SQLiteSource{repo: r, kind: kind}
}

// SQLiteSource is one transaction collection stored in SQLite.
type SQLiteSource struct {
	repo *SQLiteRepository
	kind models.Kind
}

const selectColumns = `SELECT id, user_id, amount, category, description, date, created_at FROM transactions`

func (s *SQLiteSource) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	t := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        models.CalendarDate(in.Date),
		CreatedAt:   s.repo.now().UTC(),
	}

	_, err := s.repo.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, user_id, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(s.kind), t.UserID, t.Amount.String(), t.Category, t.Description,
		t.DateString(), t.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert %s: %w", s.kind, err)
	}

	slog.InfoContext(ctx, "transaction saved to sqlite", "kind", s.kind, "id", t.ID, "amount", t.Amount.String())
	return t, nil
}

// CreateMany inserts all inputs in one database transaction. Nothing is
// written if any input is invalid.
func (s *SQLiteSource) CreateMany(ctx context.Context, inputs []models.TransactionInput) ([]models.Transaction, error) {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	tx, err := s.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (id, kind, user_id, amount, category, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	created := make([]models.Transaction, 0, len(inputs))
	for _, in := range inputs {
		t := models.Transaction{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			Amount:      in.Amount,
			Category:    in.Category,
			Description: in.Description,
			Date:        models.CalendarDate(in.Date),
			CreatedAt:   s.repo.now().UTC(),
		}
		_, err := stmt.ExecContext(ctx, t.ID, string(s.kind), t.UserID, t.Amount.String(), t.Category,
			t.Description, t.DateString(), t.CreatedAt.Format(timestampLayout))
		if err != nil {
			return nil, fmt.Errorf("insert %s: %w", s.kind, err)
		}
		created = append(created, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	slog.InfoContext(ctx, "transactions imported to sqlite", "kind", s.kind, "count", len(created))
	return created, nil
}

func (s *SQLiteSource) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.GetByDateRange(ctx, userID, models.DateRange{})
}

func (s *SQLiteSource) GetByDateRange(ctx context.Context, userID string, r models.DateRange) ([]models.Transaction, error) {
	out := []models.Transaction{}
	if userID == "" {
		return out, nil
	}

	where := []string{"kind = ?", "user_id = ?"}
	args := []any{string(s.kind), userID}
	if !r.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, r.Start.Format(models.DateLayout))
	}
	if !r.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, r.End.Format(models.DateLayout))
	}
	query := selectColumns + " WHERE " + strings.Join(where, " AND ") + " ORDER BY date DESC, created_at DESC"

	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.kind, err)
	}
	return out, nil
}

func (s *SQLiteSource) Update(ctx context.Context, id string, patch models.TransactionPatch) (models.Transaction, error) {
	if err := patch.Validate(id); err != nil {
		return models.Transaction{}, err
	}

	row := s.repo.db.QueryRowContext(ctx, selectColumns+" WHERE id = ? AND kind = ?", id, string(s.kind))
	current, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, models.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}

	t := patch.Apply(current)
	t.Date = models.CalendarDate(t.Date)
	_, err = s.repo.db.ExecContext(ctx,
		`UPDATE transactions SET user_id = ?, amount = ?, category = ?, description = ?, date = ?
		 WHERE id = ? AND kind = ?`,
		t.UserID, t.Amount.String(), t.Category, t.Description, t.DateString(), id, string(s.kind),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}
	return t, nil
}

func (s *SQLiteSource) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrMissingID
	}

	res, err := s.repo.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND kind = ?`, id, string(s.kind))
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		t                       models.Transaction
		amount, date, createdAt string
	)
	if err := row.Scan(&t.ID, &t.UserID, &amount, &t.Category, &t.Description, &date, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return t, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if t.Date, err = models.ParseDate(date); err != nil {
		return t, fmt.Errorf("parse date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return t, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return t, nil
}
