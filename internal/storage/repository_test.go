package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func ownerID(id int64) *int64 { return &id }

func TestSeedData(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("get demo user: %v", err)
	}
	if u.Username != "demo" {
		t.Fatalf("username = %q, want demo", u.Username)
	}

	all, err := repo.ListCategories(ctx, nil, "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(all) != 13 {
		t.Fatalf("seeded categories = %d, want 13", len(all))
	}

	income, err := repo.ListCategories(ctx, nil, core.Income)
	if err != nil {
		t.Fatalf("list income categories: %v", err)
	}
	if len(income) != 5 {
		t.Fatalf("income categories = %d, want 5", len(income))
	}
	for _, c := range income {
		if !c.IsDefault {
			t.Fatalf("seed category %q should be default", c.Name)
		}
	}
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, core.Category{
		Name: "Pets", Type: core.Expense, Icon: "paw-print", Color: "#8BC34A", OwnerID: ownerID(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := repo.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Pets" || got.Type != core.Expense {
		t.Fatalf("got %+v", got)
	}

	got.Name = "Pet Care"
	got.Color = "#CDDC39"
	updated, err := repo.UpdateCategory(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Pet Care" || updated.Color != "#CDDC39" {
		t.Fatalf("updated = %+v", updated)
	}

	if err := repo.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetCategory(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		Name: "Subscriptions", Type: core.Expense, Icon: "repeat", Color: "#9C27B0",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	_, err = repo.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 999}, Description: "Streaming", Date: time.Now().UTC(), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.DeleteCategory(ctx, cat.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got %v", err)
	}
	if _, err := repo.GetCategory(ctx, cat.ID); err != nil {
		t.Fatalf("category should survive a refused delete: %v", err)
	}
}

func TestTransactionRangeInclusive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, err := repo.ListCategories(ctx, nil, core.Expense)
	if err != nil || len(cats) == 0 {
		t.Fatalf("need a seeded expense category: %v", err)
	}
	catID := cats[0].ID

	mk := func(desc string, date time.Time) {
		t.Helper()
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Amount: core.Money{Cents: 1000}, Description: desc, Date: date, CategoryID: catID, OwnerID: ownerID(1),
		})
		if err != nil {
			t.Fatalf("create %s: %v", desc, err)
		}
	}

	start := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.May, 31, 23, 59, 59, 0, time.UTC)
	mk("on start", start)
	mk("on end", end)
	mk("inside", time.Date(2023, time.May, 15, 12, 0, 0, 0, time.UTC))
	mk("before", start.Add(-time.Second))
	mk("after", end.Add(time.Second))

	list, err := repo.ListTransactionsInRange(ctx, ownerID(1), start, end)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d transactions, want 3 (boundaries inclusive)", len(list))
	}
	// Newest first.
	for i := 1; i < len(list); i++ {
		if list[i].Date.After(list[i-1].Date) {
			t.Fatalf("list not sorted by date descending")
		}
	}
	for _, tx := range list {
		if tx.Category == nil {
			t.Fatalf("transaction %d missing joined category", tx.ID)
		}
	}
}

func TestTransactionUpdateResetsExport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, _ := repo.ListCategories(ctx, nil, core.Expense)
	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 4580}, Description: "Groceries", Date: time.Now().UTC(), CategoryID: cats[0].ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.MarkExported(ctx, tx.ID); err != nil {
		t.Fatalf("mark exported: %v", err)
	}
	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %d", len(pending))
	}

	tx.Amount.Cents = 5000
	if _, err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending after update: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID {
		t.Fatalf("updated transaction should be pending again, got %+v", pending)
	}
}

func TestUpsertBudgetIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, _ := repo.ListCategories(ctx, nil, core.Expense)
	b := core.Budget{
		Amount: core.Money{Cents: 50000}, Month: 5, Year: 2023, CategoryID: cats[0].ID, OwnerID: ownerID(1),
	}

	first, err := repo.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	b.Amount.Cents = 60000
	second, err := repo.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second row: %d != %d", second.ID, first.ID)
	}
	if second.Amount.Cents != 60000 {
		t.Fatalf("amount = %d, want 60000", second.Amount.Cents)
	}

	list, err := repo.ListBudgets(ctx, ownerID(1), 5, 2023)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d budgets, want 1", len(list))
	}
	if list[0].Category == nil || list[0].Category.ID != cats[0].ID {
		t.Fatalf("budget missing joined category: %+v", list[0])
	}
}

func TestUpsertBudgetOwnerlessScope(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, _ := repo.ListCategories(ctx, nil, core.Expense)
	b := core.Budget{Amount: core.Money{Cents: 10000}, Month: 6, Year: 2023, CategoryID: cats[0].ID}

	first, err := repo.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	b.Amount.Cents = 20000
	second, err := repo.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("ownerless upsert duplicated: %d != %d", second.ID, first.ID)
	}

	// An owned budget for the same tuple is a separate row.
	b.OwnerID = ownerID(1)
	owned, err := repo.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("owned upsert: %v", err)
	}
	if owned.ID == first.ID {
		t.Fatalf("owned and ownerless budgets should not collide")
	}
}

func TestBudgetUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, _ := repo.ListCategories(ctx, nil, core.Expense)
	b, err := repo.UpsertBudget(ctx, core.Budget{
		Amount: core.Money{Cents: 30000}, Month: 7, Year: 2023, CategoryID: cats[0].ID, OwnerID: ownerID(1),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	updated, err := repo.UpdateBudgetAmount(ctx, b.ID, core.Money{Cents: 35000})
	if err != nil {
		t.Fatalf("update amount: %v", err)
	}
	if updated.Amount.Cents != 35000 {
		t.Fatalf("amount = %d, want 35000", updated.Amount.Cents)
	}

	if err := repo.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetBudget(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteBudget(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}
