// Package storage persists the tracker's data in SQLite and owns the
// schema migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCategoryInUse is returned when deleting a category that still has
	// transactions or budgets pointing at it.
	ErrCategoryInUse = errors.New("category has transactions or budgets")
)

type SQLiteRepository struct {
	db *sql.DB
}

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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
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

// ownerClause appends an owner filter to a query. A nil owner means
// unscoped, matching every row.
func ownerClause(query, column string, owner *int64, args []any) (string, []any) {
	if owner == nil {
		return query, args
	}
	return query + " AND " + column + " = ?", append(args, *owner)
}

// --- users ---

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// --- categories ---

const categoryColumns = "id, name, type, icon, color, is_default, user_id, created_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.OwnerID, &c.CreatedAt)
	return c, err
}

// ListCategories returns categories, optionally restricted to one owner
// and one type. typ "" means both types.
func (r *SQLiteRepository) ListCategories(ctx context.Context, owner *int64, typ core.CategoryType) ([]core.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories WHERE 1=1"
	var args []any
	query, args = ownerClause(query, "user_id", owner, args)
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, type, icon, color, is_default, user_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+categoryColumns,
		c.Name, c.Type, c.Icon, c.Color, c.IsDefault, c.OwnerID)
	created, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "category created", "id", created.ID, "name", created.Name, "type", created.Type)
	return created, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = ?, type = ?, icon = ?, color = ?, is_default = ?
		WHERE id = ?
		RETURNING `+categoryColumns,
		c.Name, c.Type, c.Icon, c.Color, c.IsDefault, c.ID)
	updated, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes a category unless transactions or budgets still
// reference it. The check and the delete run in one transaction so a
// concurrent insert cannot slip between them.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var refs int64
	err = tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM transactions WHERE category_id = ?)
		     + (SELECT COUNT(*) FROM budgets WHERE category_id = ?)`,
		id, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return ErrCategoryInUse
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// --- transactions ---

const transactionColumns = `t.id, t.amount_cents, t.description, t.date, t.category_id, t.user_id, t.created_at,
	c.id, c.name, c.type, c.icon, c.color, c.is_default, c.user_id, c.created_at`

const transactionFrom = " FROM transactions t JOIN categories c ON c.id = t.category_id"

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var c core.Category
	err := row.Scan(
		&t.ID, &t.Amount.Cents, &t.Description, &t.Date, &t.CategoryID, &t.OwnerID, &t.CreatedAt,
		&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.OwnerID, &c.CreatedAt)
	if err != nil {
		return t, err
	}
	t.Category = &c
	return t, nil
}

// ListTransactionsInRange returns transactions whose date falls inside
// [start, end], newest first, each with its category joined.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, owner *int64, start, end time.Time) ([]core.Transaction, error) {
	query := "SELECT " + transactionColumns + transactionFrom + " WHERE t.date >= ? AND t.date <= ?"
	args := []any{start.UTC(), end.UTC()}
	query, args = ownerClause(query, "t.user_id", owner, args)
	query += " ORDER BY t.date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+transactionFrom+" WHERE t.id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (amount_cents, description, date, category_id, user_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		t.Amount.Cents, t.Description, t.Date.UTC(), t.CategoryID, t.OwnerID).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	created, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "transaction created",
		"id", created.ID,
		"amount_cents", created.Amount.Cents,
		"category_id", created.CategoryID)
	return created, nil
}

// UpdateTransaction overwrites the mutable fields and resets the export
// status so the ledger picks the row up again.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, description = ?, date = ?, category_id = ?, export_status = 'pending', exported_at = NULL
		WHERE id = ?`,
		t.Amount.Cents, t.Description, t.Date.UTC(), t.CategoryID, t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingExport returns transactions not yet written to the external
// ledger, oldest first.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+transactionFrom+
			" WHERE t.export_status = 'pending' ORDER BY t.created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_status = 'exported', exported_at = ? WHERE id = ?",
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "transaction marked exported", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "transaction marked with export error", "id", id)
	return nil
}

// --- budgets ---

const budgetColumns = `b.id, b.amount_cents, b.month, b.year, b.category_id, b.user_id, b.created_at,
	c.id, c.name, c.type, c.icon, c.color, c.is_default, c.user_id, c.created_at`

const budgetFrom = " FROM budgets b JOIN categories c ON c.id = b.category_id"

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	var c core.Category
	err := row.Scan(
		&b.ID, &b.Amount.Cents, &b.Month, &b.Year, &b.CategoryID, &b.OwnerID, &b.CreatedAt,
		&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.OwnerID, &c.CreatedAt)
	if err != nil {
		return b, err
	}
	b.Category = &c
	return b, nil
}

// UpsertBudget inserts a budget or, when one already exists for the same
// (category, month, year, owner) tuple, overwrites its amount. The owned
// and ownerless scopes have separate unique indexes, so each needs its
// own conflict target.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var query string
	args := []any{b.Amount.Cents, b.Month, b.Year, b.CategoryID}
	if b.OwnerID != nil {
		query = `
			INSERT INTO budgets (amount_cents, month, year, category_id, user_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (category_id, month, year, user_id) WHERE user_id IS NOT NULL
			DO UPDATE SET amount_cents = excluded.amount_cents
			RETURNING id`
		args = append(args, *b.OwnerID)
	} else {
		query = `
			INSERT INTO budgets (amount_cents, month, year, category_id, user_id)
			VALUES (?, ?, ?, ?, NULL)
			ON CONFLICT (category_id, month, year) WHERE user_id IS NULL
			DO UPDATE SET amount_cents = excluded.amount_cents
			RETURNING id`
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.GetBudget(ctx, id)
}

// ListBudgets returns the budgets for one calendar month, each with its
// category joined.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, owner *int64, month, year int) ([]core.Budget, error) {
	query := "SELECT " + budgetColumns + budgetFrom + " WHERE b.month = ? AND b.year = ?"
	args := []any{month, year}
	query, args = ownerClause(query, "b.user_id", owner, args)
	query += " ORDER BY b.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+budgetFrom+" WHERE b.id = ?", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// UpdateBudgetAmount changes only the amount of an existing budget.
func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, id int64, amount core.Money) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE budgets SET amount_cents = ? WHERE id = ?", amount.Cents, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, ErrNotFound
	}
	return r.GetBudget(ctx, id)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
