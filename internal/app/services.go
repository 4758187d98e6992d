package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/allocator"
	"github.com/buildshare/blueprint-backend/internal/blobstore"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/services"
)

type Services struct {
	Blobs      blobstore.Store
	Allocator  allocator.Allocator
	Accounting services.AccountingService
	Blueprint  services.BlueprintService
	Comment    services.CommentService
	Claim      services.ClaimService
	Auth       services.AuthService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	blobs, err := blobstore.New(log, blobstore.Config{
		Root:  cfg.BlobRoot,
		Depth: cfg.BlobDepth,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init blob store: %w", err)
	}

	alloc, err := allocator.New(log, reposet.Blueprint, blobs, allocator.Config{
		Alphabet:    cfg.AllocAlphabet,
		Length:      cfg.AllocLength,
		MaxAttempts: cfg.AllocMaxAttempts,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init allocator: %w", err)
	}

	accounting := services.NewAccountingService(db, log, reposet.UserInfo)
	blueprint := services.NewBlueprintService(db, log, alloc, blobs, reposet.Blueprint, reposet.BlueprintVersion, reposet.Comment, accounting)
	comment := services.NewCommentService(db, log, reposet.Blueprint, reposet.Comment, accounting)
	claim := services.NewClaimService(db, log, reposet.Blueprint, reposet.User, accounting)
	auth := services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	return Services{
		Blobs:      blobs,
		Allocator:  alloc,
		Accounting: accounting,
		Blueprint:  blueprint,
		Comment:    comment,
		Claim:      claim,
		Auth:       auth,
	}, nil
}
