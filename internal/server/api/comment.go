package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type CommentHandlersParams struct {
	fx.In

	CommentService *biz.CommentService
}

func NewCommentHandlers(params CommentHandlersParams) *CommentHandlers {
	return &CommentHandlers{
		CommentService: params.CommentService,
	}
}

type CommentHandlers struct {
	CommentService *biz.CommentService
}

type CreateCommentRequest struct {
	PostID    uint   `json:"postID"  binding:"required"`
	Content   string `json:"content" binding:"required"`
	ReplyToID *uint  `json:"replyToID"`
}

func (h *CommentHandlers) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateCommentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	comment, err := h.CommentService.CreateComment(ctx, biz.CreateCommentInput{
		PostID:    req.PostID,
		Content:   req.Content,
		ReplyToID: req.ReplyToID,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.CommentService.ConvertCommentToCommentInfo(ctx, comment)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, info)
}

func (h *CommentHandlers) GetComment(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comment, err := h.CommentService.GetComment(ctx, id)
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.CommentService.ConvertCommentToCommentInfo(ctx, comment)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListComments lists visible comments, optionally narrowed by the postID
// query parameter.
func (h *CommentHandlers) ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	var postID *uint

	if raw := c.Query("postID"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			JSONError(c, http.StatusBadRequest, errors.New("Invalid postID filter"))
			return
		}

		id := uint(parsed)
		postID = &id
	}

	comments, err := h.CommentService.ListComments(ctx, postID)
	if err != nil {
		BizError(c, err)
		return
	}

	infos, err := h.CommentService.ConvertCommentsToCommentInfos(ctx, comments)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": infos})
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandlers) UpdateComment(c *gin.Context) {
	h.updateContent(c, h.CommentService.UpdateComment)
}

func (h *CommentHandlers) PatchComment(c *gin.Context) {
	h.updateContent(c, h.CommentService.PatchComment)
}

func (h *CommentHandlers) updateContent(
	c *gin.Context,
	update func(ctx context.Context, id uint, content string) (*models.Comment, error),
) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	comment, err := update(ctx, id, req.Content)
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.CommentService.ConvertCommentToCommentInfo(ctx, comment)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *CommentHandlers) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.CommentService.DeleteComment(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
