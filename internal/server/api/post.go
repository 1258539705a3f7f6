package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type PostHandlersParams struct {
	fx.In

	PostService *biz.PostService
}

func NewPostHandlers(params PostHandlersParams) *PostHandlers {
	return &PostHandlers{
		PostService: params.PostService,
	}
}

type PostHandlers struct {
	PostService *biz.PostService
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content"`
	Publish   bool   `json:"publish"`
	TagIDs    []uint `json:"tagIDs"`
}

func (h *PostHandlers) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreatePostRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	post, err := h.PostService.CreatePost(ctx, biz.CreatePostInput{
		Title:     req.Title,
		Thumbnail: req.Thumbnail,
		Content:   req.Content,
		Publish:   req.Publish,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, info)
}

func (h *PostHandlers) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.PostService.GetPost(ctx, id)
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *PostHandlers) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.PostService.ListPosts(ctx)
	if err != nil {
		BizError(c, err)
		return
	}

	infos, err := h.PostService.ConvertPostsToPostInfos(ctx, posts)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": infos})
}

type UpdatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content"`
	Publish   bool   `json:"publish"`
	TagIDs    []uint `json:"tagIDs"`
}

func (h *PostHandlers) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePostRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	post, err := h.PostService.UpdatePost(ctx, id, biz.UpdatePostInput{
		Title:     req.Title,
		Thumbnail: req.Thumbnail,
		Content:   req.Content,
		Publish:   req.Publish,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

type PatchPostRequest struct {
	Title     *string `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	Content   *string `json:"content"`
	Publish   *bool   `json:"publish"`
	TagIDs    *[]uint `json:"tagIDs"`
}

func (h *PostHandlers) PatchPost(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PatchPostRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	post, err := h.PostService.PatchPost(ctx, id, biz.PatchPostInput{
		Title:     req.Title,
		Thumbnail: req.Thumbnail,
		Content:   req.Content,
		Publish:   req.Publish,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *PostHandlers) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.PostService.DeletePost(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddPostTag attaches an existing tag to a post.
func (h *PostHandlers) AddPostTag(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tagID, ok := pathID(c, "tagID")
	if !ok {
		return
	}

	post, err := h.PostService.AddPostTag(ctx, postID, tagID)
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// RemovePostTag detaches a tag from a post.
func (h *PostHandlers) RemovePostTag(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tagID, ok := pathID(c, "tagID")
	if !ok {
		return
	}

	post, err := h.PostService.RemovePostTag(ctx, postID, tagID)
	if err != nil {
		BizError(c, err)
		return
	}

	info, err := h.PostService.ConvertPostToPostInfo(ctx, post)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
