package rank

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "ranking.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleRow(name string, guesses int, duration float64) Row {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return Row{
		Name:       name,
		StartTime:  start,
		EndTime:    start.Add(time.Duration(duration) * time.Second),
		Duration:   duration,
		GuessCount: guesses,
	}
}

func TestTopOrdersByGuessesThenDuration(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, r := range []Row{
		sampleRow("slow-few", 5, 300),
		sampleRow("fast-many", 9, 60),
		sampleRow("fast-few", 5, 120),
	} {
		if _, err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rows, err := repo.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{"fast-few", "slow-few", "fast-many"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("row %d: expected %s, got %s", i, name, rows[i].Name)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleRow("alice", 7, 90))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated := sampleRow("alice-fixed", 6, 80)
	updated.ID = id
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "alice-fixed" || rows[0].GuessCount != 6 {
		t.Fatalf("unexpected rows after update: %+v", rows)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("deleting a missing row should be ErrNoRows, got %v", err)
	}
	if err := repo.Update(ctx, updated); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("updating a missing row should be ErrNoRows, got %v", err)
	}
}
