package allocator

import (
	"context"
	"errors"
	"testing"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

type fakeLedger struct {
	taken map[string]bool
}

func (f *fakeLedger) FileIDTaken(ctx context.Context, fileID string) (bool, error) {
	return f.taken[fileID], nil
}

type fakeShards struct {
	occupied map[string]bool
}

func (f *fakeShards) Exists(fileID string) bool {
	return f.occupied[fileID]
}

func newTestAllocator(t *testing.T, ledger *fakeLedger, shards *fakeShards, cfg Config) Allocator {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	a, err := New(log, ledger, shards, cfg)
	if err != nil {
		t.Fatalf("init allocator: %v", err)
	}
	return a
}

func TestAllocateDrainsTinyNamespace(t *testing.T) {
	ledger := &fakeLedger{taken: map[string]bool{}}
	shards := &fakeShards{occupied: map[string]bool{}}
	// Two symbols, length two: exactly four possible identifiers.
	a := newTestAllocator(t, ledger, shards, Config{Alphabet: "ab", Length: 2, MaxAttempts: 5000})

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		id, err := a.Allocate(context.Background())
		if err != nil {
			t.Fatalf("allocation %d: %v", i+1, err)
		}
		if len(id) != 2 {
			t.Fatalf("allocation %d: want length 2, got %q", i+1, id)
		}
		if seen[id] {
			t.Fatalf("allocation %d returned duplicate %q", i+1, id)
		}
		seen[id] = true
		ledger.taken[id] = true
	}

	_, err := a.Allocate(context.Background())
	if !errors.Is(err, apperr.ErrAllocationExhausted) {
		t.Fatalf("want ErrAllocationExhausted, got %v", err)
	}
	var exhausted *apperr.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("want *apperr.ExhaustedError, got %T", err)
	}
	if exhausted.Attempts != 5000 || exhausted.Length != 2 {
		t.Fatalf("unexpected exhaustion detail: %+v", exhausted)
	}
}

func TestAllocateSkipsShardRemnants(t *testing.T) {
	ledger := &fakeLedger{taken: map[string]bool{}}
	// One of the two possible identifiers has a leftover shard directory but
	// no ledger row; the allocator must still avoid it.
	shards := &fakeShards{occupied: map[string]bool{"a": true}}
	a := newTestAllocator(t, ledger, shards, Config{Alphabet: "ab", Length: 1, MaxAttempts: 2000})

	id, err := a.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if id != "b" {
		t.Fatalf("want %q got %q", "b", id)
	}
}

func TestAllocateHonorsLedger(t *testing.T) {
	ledger := &fakeLedger{taken: map[string]bool{"a": true}}
	shards := &fakeShards{occupied: map[string]bool{}}
	a := newTestAllocator(t, ledger, shards, Config{Alphabet: "ab", Length: 1, MaxAttempts: 2000})

	id, err := a.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if id != "b" {
		t.Fatalf("want %q got %q", "b", id)
	}
}

func TestRejectsDegenerateAlphabet(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if _, err := New(log, &fakeLedger{}, &fakeShards{}, Config{Alphabet: "a"}); err == nil {
		t.Fatal("want error for single-symbol alphabet")
	}
}
