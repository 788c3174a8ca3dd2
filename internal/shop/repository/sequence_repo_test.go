package repository

import (
	"context"
	"testing"

	"github.com/jalalon11/vsmartnewsms/internal/shop/testutil"
)

func TestSequenceNextIncrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, "RO-2026")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestSequenceKeysAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	if _, err := repo.Next(ctx, "RO-2026"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, err := repo.Next(ctx, "RO-2026"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	// a fresh period starts over at 1
	got, err := repo.Next(ctx, "INV-202608")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected new key to start at 1, got %d", got)
	}
}
