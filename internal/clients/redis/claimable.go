package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/buildshare/blueprint-backend/internal/logger"
)

// ClaimableStore tracks which blueprint ids a browser session created
// anonymously, so the UI can offer a claim action after login. The list is
// advisory; ClaimService re-validates ownership server-side on every claim.
type ClaimableStore interface {
	Add(ctx context.Context, sessionID string, blueprintID uuid.UUID) error
	List(ctx context.Context, sessionID string) ([]uuid.UUID, error)
	Remove(ctx context.Context, sessionID string, blueprintID uuid.UUID) error
	Close() error
}

type claimableStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewClaimableStore(log *logger.Logger) (ClaimableStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &claimableStore{
		log:    log.With("service", "ClaimableStore"),
		rdb:    rdb,
		prefix: "claimable:",
		ttl:    30 * 24 * time.Hour,
	}, nil
}

func (s *claimableStore) Add(ctx context.Context, sessionID string, blueprintID uuid.UUID) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("claimable store not initialized")
	}
	key := s.key(sessionID)
	if err := s.rdb.SAdd(ctx, key, blueprintID.String()).Err(); err != nil {
		return fmt.Errorf("sadd claimable: %w", err)
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

func (s *claimableStore) List(ctx context.Context, sessionID string) ([]uuid.UUID, error) {
	if s == nil || s.rdb == nil {
		return nil, fmt.Errorf("claimable store not initialized")
	}
	members, err := s.rdb.SMembers(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers claimable: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			s.log.Warn("Dropping malformed claimable entry", "session_id", sessionID, "entry", m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *claimableStore) Remove(ctx context.Context, sessionID string, blueprintID uuid.UUID) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("claimable store not initialized")
	}
	return s.rdb.SRem(ctx, s.key(sessionID), blueprintID.String()).Err()
}

func (s *claimableStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *claimableStore) key(sessionID string) string {
	return s.prefix + sessionID
}
