package biz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

// Reaction target type names used on the wire.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

type ReactionServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewReactionService(params ReactionServiceParams) *ReactionService {
	return &ReactionService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// ReactionService manages likes and dislikes. A user holds at most one
// reaction per target; the partial unique indexes back the service-level
// pre-check so a concurrent duplicate still fails at commit.
type ReactionService struct {
	*AbstractService
}

type CreateReactionInput struct {
	Type       models.ReactionType
	TargetType string
	TargetID   uint
}

func (s *ReactionService) CreateReaction(ctx context.Context, input CreateReactionInput) (*models.Reaction, error) {
	if err := s.authorize(ctx, authz.ResourceReaction, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	reaction := &models.Reaction{
		OwnerID: actor.UserID,
		Type:    input.Type,
	}

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		// Targets are loaded without the visibility scope: reacting to
		// private content is an invariant violation rather than a lookup
		// miss.
		switch input.TargetType {
		case TargetPost:
			var post models.Post

			if err := tx.First(&post, input.TargetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validate.Violations{"Post does not exist."}
				}

				return fmt.Errorf("failed to get post: %w", err)
			}

			reaction.PostID = &post.ID
			reaction.Post = &post
		case TargetComment:
			var comment models.Comment

			err := tx.Preload("Post").First(&comment, input.TargetID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validate.Violations{"Comment does not exist."}
				}

				return fmt.Errorf("failed to get comment: %w", err)
			}

			reaction.CommentID = &comment.ID
			reaction.Comment = &comment
		default:
			return validate.Violations{"Reaction target type must be post or comment."}
		}

		if err := validate.Reaction(reaction); err != nil {
			return err
		}

		if err := s.checkNotDuplicate(ctx, reaction); err != nil {
			return err
		}

		if err := tx.Omit("Post", "Comment").Create(reaction).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent request won the race; report it the same way
				// as the pre-check would have.
				return duplicateReactionViolation()
			}

			return fmt.Errorf("failed to create reaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reaction, nil
}

func (s *ReactionService) checkNotDuplicate(ctx context.Context, reaction *models.Reaction) error {
	query := s.dbFromContext(ctx).
		Model(&models.Reaction{}).
		Where("owner_id = ?", reaction.OwnerID)

	if reaction.TargetsPost() {
		query = query.Where("post_id = ?", *reaction.PostID)
	} else {
		query = query.Where("comment_id = ?", *reaction.CommentID)
	}

	var count int64

	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check reaction uniqueness: %w", err)
	}

	if count > 0 {
		return duplicateReactionViolation()
	}

	return nil
}

func duplicateReactionViolation() error {
	return validate.Violations{"You have already reacted to this target."}
}

func (s *ReactionService) GetReaction(ctx context.Context, id uint) (*models.Reaction, error) {
	if err := s.authorize(ctx, authz.ResourceReaction, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	return s.getVisibleReaction(ctx, actor, id)
}

// ListReactions returns the reactions visible to the caller, newest
// first.
func (s *ReactionService) ListReactions(ctx context.Context) ([]models.Reaction, error) {
	if err := s.authorize(ctx, authz.ResourceReaction, authz.ActionList, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	var reactions []models.Reaction

	err := s.dbFromContext(ctx).
		Scopes(db.VisibleReactions(actor)).
		Preload("Owner").
		Joins("LEFT JOIN users ON users.id = reactions.owner_id").
		Order("users.username, reactions.created_at DESC").
		Find(&reactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}

	return reactions, nil
}

// UpdateReaction switches the reaction type. The target cannot change;
// remove and recreate instead.
func (s *ReactionService) UpdateReaction(ctx context.Context, id uint, typ models.ReactionType) (*models.Reaction, error) {
	var reaction *models.Reaction

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		reaction, err = s.writableReaction(ctx, id, authz.ActionUpdate)
		if err != nil {
			return err
		}

		if !typ.Valid() {
			return validate.Violations{"Reaction type must be Like or Dislike."}
		}

		reaction.Type = typ

		err = s.dbFromContext(ctx).
			Omit("Post", "Comment", "Owner").
			Save(reaction).Error
		if err != nil {
			return fmt.Errorf("failed to update reaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reaction, nil
}

func (s *ReactionService) DeleteReaction(ctx context.Context, id uint) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		reaction, err := s.writableReaction(ctx, id, authz.ActionDestroy)
		if err != nil {
			return err
		}

		if err := s.dbFromContext(ctx).Delete(reaction).Error; err != nil {
			return fmt.Errorf("failed to delete reaction: %w", err)
		}

		return nil
	})
}

func (s *ReactionService) writableReaction(ctx context.Context, id uint, act authz.Action) (*models.Reaction, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	reaction, err := s.getVisibleReaction(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, authz.ResourceReaction, act, &reaction.OwnerID); err != nil {
		return nil, err
	}

	return reaction, nil
}

func (s *ReactionService) getVisibleReaction(ctx context.Context, actor authz.Identity, id uint) (*models.Reaction, error) {
	var reaction models.Reaction

	err := s.dbFromContext(ctx).
		Scopes(db.VisibleReactions(actor)).
		Preload("Owner").
		Where("reactions.id = ?", id).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}

	return &reaction, nil
}

func ConvertReactionToReactionInfo(reaction *models.Reaction) *objects.ReactionInfo {
	info := &objects.ReactionInfo{
		ID:         reaction.ID,
		Type:       reaction.Type.Display(),
		CreateDate: reaction.CreatedAt,
	}

	if reaction.Owner != nil {
		info.Owner = reaction.Owner.Username
	}

	switch {
	case reaction.TargetsPost():
		info.TargetType = TargetPost
		info.TargetID = *reaction.PostID
	case reaction.TargetsComment():
		info.TargetType = TargetComment
		info.TargetID = *reaction.CommentID
	}

	return info
}
