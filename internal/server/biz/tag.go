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
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

type TagServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewTagService(params TagServiceParams) *TagService {
	return &TagService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// TagService manages the shared tag catalog. Authors create tags;
// renaming and deleting them is moderation work.
type TagService struct {
	*AbstractService
}

func (s *TagService) CreateTag(ctx context.Context, title string) (*models.Tag, error) {
	if err := s.authorize(ctx, authz.ResourceTag, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	if err := validate.Tag(title); err != nil {
		return nil, err
	}

	tag := &models.Tag{Title: title}

	if err := s.dbFromContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.Violations{"Tag title is already taken."}
		}

		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	if err := s.authorize(ctx, authz.ResourceTag, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	var tag models.Tag

	if err := s.dbFromContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if err := s.authorize(ctx, authz.ResourceTag, authz.ActionList, nil); err != nil {
		return nil, err
	}

	var tags []models.Tag

	if err := s.dbFromContext(ctx).Order("title").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint, title string) (*models.Tag, error) {
	if err := s.authorize(ctx, authz.ResourceTag, authz.ActionUpdate, nil); err != nil {
		return nil, err
	}

	if err := validate.Tag(title); err != nil {
		return nil, err
	}

	var tag models.Tag

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.First(&tag, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get tag: %w", err)
		}

		tag.Title = title

		if err := tx.Save(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validate.Violations{"Tag title is already taken."}
			}

			return fmt.Errorf("failed to update tag: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tag, nil
}

// DeleteTag removes a tag from the catalog and from every post carrying
// it.
func (s *TagService) DeleteTag(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, authz.ResourceTag, authz.ActionDestroy, nil); err != nil {
		return err
	}

	res := s.dbFromContext(ctx).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tag: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func ConvertTagToTagInfo(tag *models.Tag) *objects.TagInfo {
	return &objects.TagInfo{
		ID:    tag.ID,
		Title: tag.Title,
	}
}
