package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/log"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

type PostServiceParams struct {
	fx.In

	DB              *gorm.DB
	ImageURLChecker validate.ImageURLChecker
}

func NewPostService(params PostServiceParams) *PostService {
	return &PostService{
		AbstractService: &AbstractService{db: params.DB},
		imageChecker:    params.ImageURLChecker,
	}
}

// PostService manages posts and their tag sets. Reads go through the
// visibility scope, so a draft belonging to someone else behaves exactly
// like a post that does not exist.
type PostService struct {
	*AbstractService

	imageChecker validate.ImageURLChecker
}

type CreatePostInput struct {
	Title     string
	Thumbnail string
	Content   string
	Publish   bool
	TagIDs    []uint
}

type UpdatePostInput struct {
	Title     string
	Thumbnail string
	Content   string
	Publish   bool
	TagIDs    []uint
}

type PatchPostInput struct {
	Title     *string
	Thumbnail *string
	Content   *string
	Publish   *bool
	TagIDs    *[]uint
}

func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if err := s.authorize(ctx, authz.ResourcePost, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	post := &models.Post{
		OwnerID:   lo.ToPtr(actor.UserID),
		Title:     input.Title,
		Thumbnail: input.Thumbnail,
		Content:   input.Content,
	}

	if input.Publish {
		post.PublishDate = lo.ToPtr(time.Now().UTC())
	}

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tags, err := s.loadTags(ctx, input.TagIDs)
		if err != nil {
			return err
		}

		post.Tags = tags

		if err := s.validatePost(ctx, post); err != nil {
			return err
		}

		if err := s.dbFromContext(ctx).Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, "post created",
		log.Uint("post_id", post.ID),
		log.Bool("published", post.Published()),
	)

	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	if err := s.authorize(ctx, authz.ResourcePost, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	return s.getVisiblePost(ctx, actor, id)
}

// ListPosts returns the posts visible to the caller, newest published
// first with the caller's drafts ahead of them.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	if err := s.authorize(ctx, authz.ResourcePost, authz.ActionList, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	var posts []models.Post

	err := s.dbFromContext(ctx).
		Scopes(db.VisiblePosts(actor)).
		Preload("Owner").
		Preload("Tags").
		Order("posts.title, posts.publish_date DESC").
		Find(&posts).Error
	if err != nil {
		log.Error(ctx, "failed to list posts", log.Cause(err))
		return nil, ErrInternal
	}

	return posts, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, input UpdatePostInput) (*models.Post, error) {
	var post *models.Post

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		post, err = s.writablePost(ctx, id, authz.ActionUpdate)
		if err != nil {
			return err
		}

		post.Title = input.Title
		post.Thumbnail = input.Thumbnail
		post.Content = input.Content

		s.setPublished(post, input.Publish)

		tags, err := s.loadTags(ctx, input.TagIDs)
		if err != nil {
			return err
		}

		post.Tags = tags

		if err := s.validatePost(ctx, post); err != nil {
			return err
		}

		tx := s.dbFromContext(ctx)

		if err := tx.Model(post).Association("Tags").Replace(tagPtrs(tags)); err != nil {
			return fmt.Errorf("failed to replace post tags: %w", err)
		}

		if err := tx.Omit("Tags").Save(post).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (s *PostService) PatchPost(ctx context.Context, id uint, input PatchPostInput) (*models.Post, error) {
	var post *models.Post

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		post, err = s.writablePost(ctx, id, authz.ActionPartialUpdate)
		if err != nil {
			return err
		}

		if input.Title != nil {
			post.Title = *input.Title
		}

		if input.Thumbnail != nil {
			post.Thumbnail = *input.Thumbnail
		}

		if input.Content != nil {
			post.Content = *input.Content
		}

		if input.Publish != nil {
			s.setPublished(post, *input.Publish)
		}

		if input.TagIDs != nil {
			tags, err := s.loadTags(ctx, *input.TagIDs)
			if err != nil {
				return err
			}

			post.Tags = tags
		}

		if err := s.validatePost(ctx, post); err != nil {
			return err
		}

		tx := s.dbFromContext(ctx)

		if input.TagIDs != nil {
			if err := tx.Model(post).Association("Tags").Replace(tagPtrs(post.Tags)); err != nil {
				return fmt.Errorf("failed to replace post tags: %w", err)
			}
		}

		if err := tx.Omit("Tags").Save(post).Error; err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost removes a post together with its comments and reactions.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		post, err := s.writablePost(ctx, id, authz.ActionDestroy)
		if err != nil {
			return err
		}

		if err := s.dbFromContext(ctx).Delete(post).Error; err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		return nil
	})
}

// AddPostTag attaches one tag to a post. The tag count bound is enforced
// here as well as on full updates, so incremental changes cannot sneak a
// sixth tag onto a post.
func (s *PostService) AddPostTag(ctx context.Context, postID, tagID uint) (*models.Post, error) {
	var post *models.Post

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		post, err = s.writablePost(ctx, postID, authz.ActionPartialUpdate)
		if err != nil {
			return err
		}

		if lo.ContainsBy(post.Tags, func(t models.Tag) bool { return t.ID == tagID }) {
			return nil
		}

		tx := s.dbFromContext(ctx)

		var tag models.Tag

		if err := tx.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get tag: %w", err)
		}

		if err := validate.PostTagCount(len(post.Tags)+1, post.Published()); err != nil {
			return err
		}

		if err := tx.Model(post).Association("Tags").Append(&tag); err != nil {
			return fmt.Errorf("failed to add post tag: %w", err)
		}

		post.Tags = append(post.Tags, tag)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// RemovePostTag detaches one tag from a post, refusing to drop a
// published post below the minimum tag count.
func (s *PostService) RemovePostTag(ctx context.Context, postID, tagID uint) (*models.Post, error) {
	var post *models.Post

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error

		post, err = s.writablePost(ctx, postID, authz.ActionPartialUpdate)
		if err != nil {
			return err
		}

		kept, removed := lo.FilterReject(post.Tags, func(t models.Tag, _ int) bool {
			return t.ID != tagID
		})
		if len(removed) == 0 {
			return ErrNotFound
		}

		if err := validate.PostTagCount(len(kept), post.Published()); err != nil {
			return err
		}

		tx := s.dbFromContext(ctx)

		if err := tx.Model(post).Association("Tags").Delete(&removed[0]); err != nil {
			return fmt.Errorf("failed to remove post tag: %w", err)
		}

		post.Tags = kept

		return nil
	})
	if err != nil {
		return nil, err
	}

	return post, nil
}

// writablePost resolves the target of a write: unauthenticated callers
// are rejected first, invisible posts read as missing, and only then is
// the write rule evaluated.
func (s *PostService) writablePost(ctx context.Context, id uint, act authz.Action) (*models.Post, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	post, err := s.getVisiblePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, authz.ResourcePost, act, post.OwnerID); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *PostService) getVisiblePost(ctx context.Context, actor authz.Identity, id uint) (*models.Post, error) {
	var post models.Post

	err := s.dbFromContext(ctx).
		Scopes(db.VisiblePosts(actor)).
		Preload("Owner").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (s *PostService) setPublished(post *models.Post, publish bool) {
	switch {
	case publish && !post.Published():
		post.PublishDate = lo.ToPtr(time.Now().UTC())
	case !publish:
		post.PublishDate = nil
	}
}

// validatePost runs the draft invariants plus the thumbnail probe.
func (s *PostService) validatePost(ctx context.Context, post *models.Post) error {
	if err := validate.Post(post); err != nil {
		return err
	}

	if post.Thumbnail != "" {
		if err := s.imageChecker.CheckImageURL(ctx, post.Thumbnail); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostService) loadTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	ids = lo.Uniq(ids)

	var tags []models.Tag

	if len(ids) == 0 {
		return tags, nil
	}

	err := s.dbFromContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	if len(tags) != len(ids) {
		return nil, validate.Violations{"One or more tags do not exist."}
	}

	return tags, nil
}

func tagPtrs(tags []models.Tag) []*models.Tag {
	return lo.Map(tags, func(t models.Tag, _ int) *models.Tag { return lo.ToPtr(t) })
}

// ConvertPostToPostInfo converts a post entity to the API representation,
// including reaction totals.
func (s *PostService) ConvertPostToPostInfo(ctx context.Context, post *models.Post) (*objects.PostInfo, error) {
	infos, err := s.ConvertPostsToPostInfos(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}

	return infos[0], nil
}

// ConvertPostsToPostInfos converts posts in bulk, fetching the reaction
// totals for the whole set in one aggregate query.
func (s *PostService) ConvertPostsToPostInfos(ctx context.Context, posts []models.Post) ([]*objects.PostInfo, error) {
	ids := lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })

	likes, dislikes, err := s.reactionCounts(ctx, "post_id", ids)
	if err != nil {
		return nil, err
	}

	infos := make([]*objects.PostInfo, 0, len(posts))

	for i := range posts {
		post := &posts[i]

		info := &objects.PostInfo{
			ID:           post.ID,
			Title:        post.Title,
			Thumbnail:    post.Thumbnail,
			PublishDate:  post.PublishDate,
			LastModified: post.UpdatedAt,
			Content:      post.Content,
			Tags:         lo.Map(post.Tags, func(t models.Tag, _ int) string { return t.Title }),
			LikeCount:    likes[post.ID],
			DislikeCount: dislikes[post.ID],
		}

		if post.Owner != nil {
			info.Owner = post.Owner.Username
		}

		infos = append(infos, info)
	}

	return infos, nil
}
