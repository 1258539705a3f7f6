package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

type CommentServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewCommentService(params CommentServiceParams) *CommentService {
	return &CommentService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// CommentService manages comments. A comment is pinned to its post and
// reply target at creation; only the content can change afterwards.
type CommentService struct {
	*AbstractService
}

type CreateCommentInput struct {
	PostID    uint
	Content   string
	ReplyToID *uint
}

func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (*models.Comment, error) {
	if err := s.authorize(ctx, authz.ResourceComment, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	comment := &models.Comment{
		OwnerID:   lo.ToPtr(actor.UserID),
		PostID:    input.PostID,
		Content:   input.Content,
		ReplyToID: input.ReplyToID,
	}

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		// The target rows are loaded without the visibility scope on
		// purpose: commenting on a draft is an invariant violation, not a
		// lookup miss.
		var post models.Post

		if err := tx.First(&post, input.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validate.Violations{"Post does not exist."}
			}

			return fmt.Errorf("failed to get post: %w", err)
		}

		var replyTo *models.Comment

		if input.ReplyToID != nil {
			replyTo = &models.Comment{}

			if err := tx.First(replyTo, *input.ReplyToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validate.Violations{"Comment being replied to does not exist."}
				}

				return fmt.Errorf("failed to get comment: %w", err)
			}
		}

		if err := validate.Comment(comment, &post, replyTo); err != nil {
			return err
		}

		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		comment.Post = &post

		return nil
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	if err := s.authorize(ctx, authz.ResourceComment, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	return s.getVisibleComment(ctx, actor, id)
}

// ListComments returns the comments visible to the caller, oldest first.
// A non-nil postID narrows the listing to one post.
func (s *CommentService) ListComments(ctx context.Context, postID *uint) ([]models.Comment, error) {
	if err := s.authorize(ctx, authz.ResourceComment, authz.ActionList, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	query := s.dbFromContext(ctx).
		Scopes(db.VisibleComments(actor)).
		Preload("Owner").
		Order("comments.post_id, comments.created_at DESC")

	if postID != nil {
		query = query.Where("comments.post_id = ?", *postID)
	}

	var comments []models.Comment

	if err := query.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, id uint, content string) (*models.Comment, error) {
	return s.updateContent(ctx, id, content, authz.ActionUpdate)
}

func (s *CommentService) PatchComment(ctx context.Context, id uint, content string) (*models.Comment, error) {
	return s.updateContent(ctx, id, content, authz.ActionPartialUpdate)
}

func (s *CommentService) updateContent(ctx context.Context, id uint, content string, act authz.Action) (*models.Comment, error) {
	var comment *models.Comment

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		comment, err = s.writableComment(ctx, id, act)
		if err != nil {
			return err
		}

		comment.Content = content

		var replyTo *models.Comment

		if comment.ReplyToID != nil {
			replyTo = &models.Comment{}

			if err := s.dbFromContext(ctx).First(replyTo, *comment.ReplyToID).Error; err != nil {
				return fmt.Errorf("failed to get comment: %w", err)
			}
		}

		if err := validate.Comment(comment, comment.Post, replyTo); err != nil {
			return err
		}

		if err := s.dbFromContext(ctx).Omit("Post", "Owner").Save(comment).Error; err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// DeleteComment removes a comment along with its replies and reactions.
func (s *CommentService) DeleteComment(ctx context.Context, id uint) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		comment, err := s.writableComment(ctx, id, authz.ActionDestroy)
		if err != nil {
			return err
		}

		if err := s.dbFromContext(ctx).Delete(comment).Error; err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		return nil
	})
}

func (s *CommentService) writableComment(ctx context.Context, id uint, act authz.Action) (*models.Comment, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	comment, err := s.getVisibleComment(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, authz.ResourceComment, act, comment.OwnerID); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *CommentService) getVisibleComment(ctx context.Context, actor authz.Identity, id uint) (*models.Comment, error) {
	var comment models.Comment

	err := s.dbFromContext(ctx).
		Scopes(db.VisibleComments(actor)).
		Preload("Owner").
		Preload("Post").
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

func (s *CommentService) ConvertCommentToCommentInfo(ctx context.Context, comment *models.Comment) (*objects.CommentInfo, error) {
	infos, err := s.ConvertCommentsToCommentInfos(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}

	return infos[0], nil
}

func (s *CommentService) ConvertCommentsToCommentInfos(ctx context.Context, comments []models.Comment) ([]*objects.CommentInfo, error) {
	ids := lo.Map(comments, func(c models.Comment, _ int) uint { return c.ID })

	likes, dislikes, err := s.reactionCounts(ctx, "comment_id", ids)
	if err != nil {
		return nil, err
	}

	infos := make([]*objects.CommentInfo, 0, len(comments))

	for i := range comments {
		comment := &comments[i]

		info := &objects.CommentInfo{
			ID:           comment.ID,
			PostID:       comment.PostID,
			ReplyToID:    comment.ReplyToID,
			Content:      comment.Content,
			CreateDate:   comment.CreatedAt,
			LikeCount:    likes[comment.ID],
			DislikeCount: dislikes[comment.ID],
		}

		if comment.Owner != nil {
			info.Owner = comment.Owner.Username
		}

		infos = append(infos, info)
	}

	return infos, nil
}
