package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	redisclient "github.com/buildshare/blueprint-backend/internal/clients/redis"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/requestdata"
	"github.com/buildshare/blueprint-backend/internal/services"
	"github.com/buildshare/blueprint-backend/internal/types"
)

type BlueprintHandler struct {
	log       *logger.Logger
	bpService services.BlueprintService
	claimable redisclient.ClaimableStore
}

func NewBlueprintHandler(log *logger.Logger, bpService services.BlueprintService, claimable redisclient.ClaimableStore) *BlueprintHandler {
	return &BlueprintHandler{
		log:       log.With("handler", "BlueprintHandler"),
		bpService: bpService,
		claimable: claimable,
	}
}

type createBlueprintRequest struct {
	Slug        string         `json:"slug"`
	Exposure    string         `json:"exposure"`
	Content     string         `json:"content"`
	Reason      string         `json:"reason"`
	Metadata    datatypes.JSON `json:"metadata"`
	PublishedAt *time.Time     `json:"published_at"`
	ExpiresAt   *time.Time     `json:"expires_at"`
}

type blueprintResponse struct {
	ID             uuid.UUID      `json:"id"`
	Slug           string         `json:"slug"`
	FileID         string         `json:"file_id"`
	AuthorID       *uuid.UUID     `json:"author_id,omitempty"`
	Exposure       types.Exposure `json:"exposure"`
	CurrentVersion int            `json:"current_version"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CommentsCount  int            `json:"comments_count"`
	CreatedAt      time.Time      `json:"created_at"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
}

func toBlueprintResponse(bp *types.Blueprint) blueprintResponse {
	return blueprintResponse{
		ID:             bp.ID,
		Slug:           bp.Slug,
		FileID:         bp.FileID,
		AuthorID:       bp.AuthorID,
		Exposure:       bp.Exposure,
		CurrentVersion: bp.CurrentVersion,
		Metadata:       bp.Metadata,
		CommentsCount:  bp.CommentsCount,
		CreatedAt:      bp.CreatedAt,
		PublishedAt:    bp.PublishedAt,
		ExpiresAt:      bp.ExpiresAt,
	}
}

// POST /api/blueprints
//
// Works for both anonymous and authenticated callers. Anonymous creations are
// remembered against the session so they can be claimed after login.
func (h *BlueprintHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}

	var req createBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	bp, err := h.bpService.Create(ctx, services.CreateBlueprintInput{
		AuthorID:    rd.AuthorID(),
		Slug:        req.Slug,
		Exposure:    types.Exposure(req.Exposure),
		Content:     []byte(req.Content),
		Reason:      req.Reason,
		Metadata:    req.Metadata,
		PublishedAt: req.PublishedAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}

	if rd.AuthorID() == nil {
		if err := h.claimable.Add(ctx, rd.SessionID, bp.ID); err != nil {
			// The blueprint exists either way; the session just loses its
			// claim shortcut.
			h.log.Warn("Failed to record claimable blueprint", "blueprint_id", bp.ID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, toBlueprintResponse(bp))
}

// GET /api/blueprints/:slug
func (h *BlueprintHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	requestedVersion, ok := parseVersionQuery(c)
	if !ok {
		return
	}

	bp, err := h.bpService.ResolveVisible(ctx, c.Param("slug"), requestedVersion, viewerID(rd))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, toBlueprintResponse(bp))
}

// GET /api/blueprints/:slug/content
func (h *BlueprintHandler) GetContent(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	requestedVersion, ok := parseVersionQuery(c)
	if !ok {
		return
	}

	_, content, err := h.bpService.ReadContent(ctx, c.Param("slug"), requestedVersion, viewerID(rd))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}

type addVersionRequest struct {
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// POST /api/blueprints/:id/versions
func (h *BlueprintHandler) AddVersion(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	blueprintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req addVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	version, err := h.bpService.AddVersion(ctx, blueprintID, []byte(req.Content), req.Reason, rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"blueprint_id": version.BlueprintID,
		"version":      version.Version,
		"created_at":   version.CreatedAt,
	})
}

// DELETE /api/blueprints/:id/versions/:version
func (h *BlueprintHandler) DeleteVersion(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	blueprintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		RespondError(c, http.StatusBadRequest, "invalid_version", err)
		return
	}

	if err := h.bpService.DeleteVersion(ctx, blueprintID, version, rd.UserID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/blueprints/:id
//
// Owners delete their own blueprints; anonymous sessions may delete blueprints
// they created, proven through the session's claimable list.
func (h *BlueprintHandler) Delete(c *gin.Context) {
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
		h.log.Warn("Failed to read claimable list", "session_id", rd.SessionID, "error", err)
		claimable = nil
	}

	if err := h.bpService.DeleteBlueprint(ctx, blueprintID, rd.AuthorID(), claimable); err != nil {
		RespondAppError(c, err)
		return
	}
	if err := h.claimable.Remove(ctx, rd.SessionID, blueprintID); err != nil {
		h.log.Warn("Failed to drop claimable entry", "blueprint_id", blueprintID, "error", err)
	}
	c.Status(http.StatusNoContent)
}

func parseVersionQuery(c *gin.Context) (*int, bool) {
	raw := c.Query("version")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		RespondError(c, http.StatusBadRequest, "invalid_version", err)
		return nil, false
	}
	return &v, true
}

func viewerID(rd *requestdata.RequestData) *uuid.UUID {
	if rd == nil {
		return nil
	}
	return rd.AuthorID()
}
