package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/requestdata"
	"github.com/buildshare/blueprint-backend/internal/services"
	"github.com/buildshare/blueprint-backend/internal/types"
)

type CommentHandler struct {
	log            *logger.Logger
	commentService services.CommentService
}

func NewCommentHandler(log *logger.Logger, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		log:            log.With("handler", "CommentHandler"),
		commentService: commentService,
	}
}

type addCommentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID          uuid.UUID  `json:"id"`
	BlueprintID uuid.UUID  `json:"blueprint_id"`
	AuthorID    *uuid.UUID `json:"author_id,omitempty"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toCommentResponse(cm *types.Comment) commentResponse {
	return commentResponse{
		ID:          cm.ID,
		BlueprintID: cm.BlueprintID,
		AuthorID:    cm.AuthorID,
		Content:     cm.Content,
		CreatedAt:   cm.CreatedAt,
	}
}

// POST /api/blueprints/:id/comments
func (h *CommentHandler) Add(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	blueprintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	comment, err := h.commentService.Add(ctx, blueprintID, viewerID(rd), req.Content)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// GET /api/blueprints/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	blueprintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	comments, err := h.commentService.ListByBlueprint(c.Request.Context(), blueprintID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	RespondOK(c, gin.H{"comments": out})
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	rd := requestdata.GetRequestData(ctx)

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.commentService.Delete(ctx, commentID, rd.UserID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
