package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

type recordingPublisher struct {
	upserts []int64
	deletes []int64
	fail    bool
}

func (p *recordingPublisher) PublishTransactionUpsert(_ context.Context, id int64) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.upserts = append(p.upserts, id)
	return nil
}

func (p *recordingPublisher) PublishTransactionDelete(_ context.Context, id int64) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.deletes = append(p.deletes, id)
	return nil
}

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func expenseCategory(t *testing.T, repo *storage.SQLiteRepository) core.Category {
	t.Helper()
	cats, err := repo.ListCategories(context.Background(), nil, core.Expense)
	if err != nil || len(cats) == 0 {
		t.Fatalf("need a seeded expense category: %v", err)
	}
	return cats[0]
}

func TestCreatePublishesUpsert(t *testing.T) {
	repo := newTestStorage(t)
	pub := &recordingPublisher{}
	svc := NewTransactionService(repo, pub)
	cat := expenseCategory(t, repo)

	created, err := svc.Create(context.Background(), core.Transaction{
		Amount: core.Money{Cents: 4580}, Description: "Groceries", Date: time.Now().UTC(), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.upserts) != 1 || pub.upserts[0] != created.ID {
		t.Fatalf("expected one upsert publish for %d, got %v", created.ID, pub.upserts)
	}
}

func TestCreateSurvivesBrokerFailure(t *testing.T) {
	repo := newTestStorage(t)
	pub := &recordingPublisher{fail: true}
	svc := NewTransactionService(repo, pub)
	cat := expenseCategory(t, repo)

	created, err := svc.Create(context.Background(), core.Transaction{
		Amount: core.Money{Cents: 1000}, Date: time.Now().UTC(), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create should not fail on publish error: %v", err)
	}
	if _, err := repo.GetTransaction(context.Background(), created.ID); err != nil {
		t.Fatalf("transaction should be saved locally: %v", err)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, &recordingPublisher{})

	_, err := svc.Create(context.Background(), core.Transaction{
		Amount: core.Money{Cents: 1000}, Date: time.Now().UTC(), CategoryID: 9999,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsInvalidAmount(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, &recordingPublisher{})
	cat := expenseCategory(t, repo)

	_, err := svc.Create(context.Background(), core.Transaction{
		Amount: core.Money{Cents: 0}, Date: time.Now().UTC(), CategoryID: cat.ID,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	repo := newTestStorage(t)
	pub := &recordingPublisher{}
	svc := NewTransactionService(repo, pub)
	cat := expenseCategory(t, repo)

	created, err := svc.Create(context.Background(), core.Transaction{
		Amount: core.Money{Cents: 2000}, Date: time.Now().UTC(), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != created.ID {
		t.Fatalf("expected one delete publish for %d, got %v", created.ID, pub.deletes)
	}

	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}
