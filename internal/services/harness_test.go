package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/allocator"
	"github.com/buildshare/blueprint-backend/internal/blobstore"
	"github.com/buildshare/blueprint-backend/internal/db"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
	"github.com/buildshare/blueprint-backend/internal/types"
)

type testEnv struct {
	db          *gorm.DB
	blobs       blobstore.Store
	userRepo    repos.UserRepo
	userInfos   repos.UserInfoRepo
	bpRepo      repos.BlueprintRepo
	versionRepo repos.BlueprintVersionRepo
	commentRepo repos.CommentRepo
	accounting  AccountingService
	blueprints  BlueprintService
	comments    CommentService
	claims      ClaimService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	gdb, err := db.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}

	blobs, err := blobstore.New(log, blobstore.Config{Root: t.TempDir(), Depth: 10})
	if err != nil {
		t.Fatalf("init blobstore: %v", err)
	}

	bpRepo := repos.NewBlueprintRepo(gdb, log)
	versionRepo := repos.NewBlueprintVersionRepo(gdb, log)
	commentRepo := repos.NewCommentRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)
	userInfos := repos.NewUserInfoRepo(gdb, log)

	alloc, err := allocator.New(log, bpRepo, blobs, allocator.Config{})
	if err != nil {
		t.Fatalf("init allocator: %v", err)
	}

	accounting := NewAccountingService(gdb, log, userInfos)
	blueprints := NewBlueprintService(gdb, log, alloc, blobs, bpRepo, versionRepo, commentRepo, accounting)
	comments := NewCommentService(gdb, log, bpRepo, commentRepo, accounting)
	claims := NewClaimService(gdb, log, bpRepo, userRepo, accounting)

	return &testEnv{
		db:          gdb,
		blobs:       blobs,
		userRepo:    userRepo,
		userInfos:   userInfos,
		bpRepo:      bpRepo,
		versionRepo: versionRepo,
		commentRepo: commentRepo,
		accounting:  accounting,
		blueprints:  blueprints,
		comments:    comments,
		claims:      claims,
	}
}

func (env *testEnv) createUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "not-a-real-hash",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := env.userRepo.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}

func (env *testEnv) createBlueprint(t *testing.T, authorID *uuid.UUID, exposure types.Exposure, content string) *types.Blueprint {
	t.Helper()
	bp, err := env.blueprints.Create(context.Background(), CreateBlueprintInput{
		AuthorID: authorID,
		Exposure: exposure,
		Content:  []byte(content),
	})
	if err != nil {
		t.Fatalf("create blueprint: %v", err)
	}
	return bp
}

func (env *testEnv) counters(t *testing.T, userID uuid.UUID) *types.UserInfo {
	t.Helper()
	info, err := env.userInfos.Get(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("read counters: %v", err)
	}
	return info
}

func assertBlueprintCounters(t *testing.T, info *types.UserInfo, wantPublic, wantPrivate int) {
	t.Helper()
	if info.CountPublicBlueprint != wantPublic || info.CountPrivateBlueprint != wantPrivate {
		t.Fatalf("blueprint counters want=%d/%d got=%d/%d",
			wantPublic, wantPrivate, info.CountPublicBlueprint, info.CountPrivateBlueprint)
	}
}

func assertCommentCounters(t *testing.T, info *types.UserInfo, wantPublic, wantPrivate int) {
	t.Helper()
	if info.CountPublicComment != wantPublic || info.CountPrivateComment != wantPrivate {
		t.Fatalf("comment counters want=%d/%d got=%d/%d",
			wantPublic, wantPrivate, info.CountPublicComment, info.CountPrivateComment)
	}
}
