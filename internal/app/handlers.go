package app

import (
	redisclient "github.com/buildshare/blueprint-backend/internal/clients/redis"
	"github.com/buildshare/blueprint-backend/internal/handlers"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Blueprint *handlers.BlueprintHandler
	Comment   *handlers.CommentHandler
	Claim     *handlers.ClaimHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, claimable redisclient.ClaimableStore) Handlers {
	return Handlers{
		Auth:      handlers.NewAuthHandler(log, serviceset.Auth),
		Blueprint: handlers.NewBlueprintHandler(log, serviceset.Blueprint, claimable),
		Comment:   handlers.NewCommentHandler(log, serviceset.Comment),
		Claim:     handlers.NewClaimHandler(log, serviceset.Claim, claimable),
	}
}
