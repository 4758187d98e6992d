package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	redisclient "github.com/buildshare/blueprint-backend/internal/clients/redis"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/requestdata"
	"github.com/buildshare/blueprint-backend/internal/services"
)

type ClaimHandler struct {
	log          *logger.Logger
	claimService services.ClaimService
	claimable    redisclient.ClaimableStore
}

func NewClaimHandler(log *logger.Logger, claimService services.ClaimService, claimable redisclient.ClaimableStore) *ClaimHandler {
	return &ClaimHandler{
		log:          log.With("handler", "ClaimHandler"),
		claimService: claimService,
		claimable:    claimable,
	}
}

// POST /api/blueprints/:id/claim
//
// Requires auth. The session's claimable list decides which blueprints this
// browser may claim; the service re-checks everything transactionally.
func (h *ClaimHandler) Claim(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}

	blueprintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	claimable, err := h.claimable.List(ctx, rd.SessionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}

	if err := h.claimService.Claim(ctx, blueprintID, rd.UserID, claimable); err != nil {
		RespondAppError(c, err)
		return
	}
	if err := h.claimable.Remove(ctx, rd.SessionID, blueprintID); err != nil {
		h.log.Warn("Failed to drop claimed entry", "blueprint_id", blueprintID, "error", err)
	}
	RespondOK(c, gin.H{"claimed": true})
}

// GET /api/claimable
//
// Lists the blueprint ids this session created anonymously.
func (h *ClaimHandler) ListClaimable(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	ids, err := h.claimable.List(ctx, rd.SessionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, gin.H{"blueprint_ids": ids})
}
