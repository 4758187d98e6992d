package allocator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

// LedgerProbe answers whether a candidate identifier is already recorded as a
// blueprint file id. Backed by the blueprints table, including soft-deleted
// rows, so identifiers are never reissued.
type LedgerProbe interface {
	FileIDTaken(ctx context.Context, fileID string) (bool, error)
}

// ShardProbe answers whether a directory already exists at the candidate's
// mapped shard path. Catches remnants of a deletion that failed mid-way and
// blobs written without a matching row.
type ShardProbe interface {
	Exists(fileID string) bool
}

// Allocator draws collision-free content identifiers. It does not reserve the
// identifier; the caller must persist it in the same logical operation that
// follows. A backend with an atomic create-if-absent primitive can close the
// remaining check-then-act window behind the same probes.
type Allocator interface {
	Allocate(ctx context.Context) (string, error)
}

type Config struct {
	Alphabet    string
	Length      int
	MaxAttempts int
}

const (
	DefaultAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	DefaultLength      = 8
	DefaultMaxAttempts = 50
)

type allocator struct {
	log      *logger.Logger
	ledger   LedgerProbe
	shards   ShardProbe
	alphabet string
	length   int
	attempts int
}

func New(baseLog *logger.Logger, ledger LedgerProbe, shards ShardProbe, cfg Config) (Allocator, error) {
	alphabet := strings.TrimSpace(cfg.Alphabet)
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("allocator alphabet needs at least 2 symbols, got %d", len(alphabet))
	}
	length := cfg.Length
	if length <= 0 {
		length = DefaultLength
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &allocator{
		log:      baseLog.With("service", "IdentifierAllocator"),
		ledger:   ledger,
		shards:   shards,
		alphabet: alphabet,
		length:   length,
		attempts: attempts,
	}, nil
}

func (a *allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= a.attempts; attempt++ {
		candidate, err := a.candidate()
		if err != nil {
			return "", fmt.Errorf("draw candidate identifier: %w", err)
		}
		taken, err := a.ledger.FileIDTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe ledger for %q: %w", candidate, err)
		}
		if taken {
			continue
		}
		if a.shards.Exists(candidate) {
			a.log.Warn("Shard path occupied without a ledger row, skipping candidate", "file_id", candidate)
			continue
		}
		return candidate, nil
	}
	err := &apperr.ExhaustedError{
		Attempts: a.attempts,
		Length:   a.length,
		Alphabet: a.alphabet,
	}
	a.log.Error("Identifier allocation exhausted", "attempts", a.attempts, "length", a.length, "alphabet_size", len(a.alphabet))
	return "", err
}

func (a *allocator) candidate() (string, error) {
	max := big.NewInt(int64(len(a.alphabet)))
	var b strings.Builder
	b.Grow(a.length)
	for i := 0; i < a.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(a.alphabet[n.Int64()])
	}
	return b.String(), nil
}
