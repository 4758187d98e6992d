package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

// Store persists raw blueprint version content on a sharded directory tree.
// Every file identifier maps to one leaf directory (one nested directory per
// identifier character, padded with filler segments to a constant depth) and
// each version token to one file inside it.
type Store interface {
	Write(ctx context.Context, fileID, token string, content []byte) error
	Read(ctx context.Context, fileID, token string) ([]byte, error)
	DeleteVersion(ctx context.Context, fileID, token string) error
	DeleteAll(ctx context.Context, fileID string) error
	// Exists reports whether the identifier's leaf directory is present,
	// including remnants of a previously failed deletion. The allocator
	// treats any hit as "taken".
	Exists(fileID string) bool
	VersionToken(version int) string
}

type Config struct {
	Root string
	// Depth is the constant directory depth under Root. Identifiers shorter
	// than Depth are padded with Filler segments so leaf fan-out stays
	// bounded regardless of identifier length.
	Depth  int
	Filler string
}

const (
	DefaultDepth  = 10
	DefaultFiller = "_"
)

var (
	// Version tokens are per-row integers, or the dotted decimal form kept
	// for content predating row-based versioning.
	tokenPattern  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

type store struct {
	log    *logger.Logger
	root   string
	depth  int
	filler string
}

func New(baseLog *logger.Logger, cfg Config) (Store, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("blobstore root required")
	}
	depth := cfg.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	filler := cfg.Filler
	if filler == "" {
		filler = DefaultFiller
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create blobstore root: %w", err)
	}
	return &store{
		log:    baseLog.With("service", "BlobStore"),
		root:   filepath.Clean(cfg.Root),
		depth:  depth,
		filler: filler,
	}, nil
}

func (s *store) VersionToken(version int) string {
	return strconv.Itoa(version)
}

func (s *store) Write(ctx context.Context, fileID, token string, content []byte) error {
	path, err := s.versionPath(fileID, token)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}

	// Publish atomically: a concurrent reader sees either the old file or
	// the new one, never a partial write.
	tmp, err := os.CreateTemp(dir, token+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish version file: %w", err)
	}
	return nil
}

func (s *store) Read(ctx context.Context, fileID, token string) ([]byte, error) {
	path, err := s.versionPath(fileID, token)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("read version file: %w", err)
	}
	return content, nil
}

func (s *store) DeleteVersion(ctx context.Context, fileID, token string) error {
	path, err := s.versionPath(fileID, token)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete version file: %w", err)
	}
	return nil
}

func (s *store) DeleteAll(ctx context.Context, fileID string) error {
	leaf, err := s.leafDir(fileID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(leaf); err != nil {
		return fmt.Errorf("delete leaf dir: %w", err)
	}
	s.pruneEmptyParents(leaf)
	return nil
}

func (s *store) Exists(fileID string) bool {
	leaf, err := s.leafDir(fileID)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(leaf)
	return statErr == nil
}

// pruneEmptyParents walks from the removed leaf back toward the shard root,
// removing directories that became empty so deleted blueprints leave no
// directory litter. Stops at the first non-empty parent.
func (s *store) pruneEmptyParents(leaf string) {
	dir := filepath.Dir(leaf)
	for dir != s.root && strings.HasPrefix(dir, s.root) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func (s *store) leafDir(fileID string) (string, error) {
	if !fileIDPattern.MatchString(fileID) {
		return "", fmt.Errorf("%w: malformed file id %q", apperr.ErrValidation, fileID)
	}
	if len(fileID) > s.depth {
		return "", fmt.Errorf("%w: file id %q longer than shard depth %d", apperr.ErrValidation, fileID, s.depth)
	}
	segments := make([]string, 0, s.depth+1)
	segments = append(segments, s.root)
	for _, c := range fileID {
		segments = append(segments, string(c))
	}
	for i := len(fileID); i < s.depth; i++ {
		segments = append(segments, s.filler)
	}
	return filepath.Join(segments...), nil
}

func (s *store) versionPath(fileID, token string) (string, error) {
	if !tokenPattern.MatchString(token) {
		return "", fmt.Errorf("%w: malformed version token %q", apperr.ErrValidation, token)
	}
	leaf, err := s.leafDir(fileID)
	if err != nil {
		return "", err
	}
	return filepath.Join(leaf, token), nil
}
