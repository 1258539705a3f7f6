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

type GroupServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewGroupService(params GroupServiceParams) *GroupService {
	return &GroupService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// GroupService manages the role catalog. Every operation is reserved for
// administrators.
type GroupService struct {
	*AbstractService
}

func (s *GroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	if err := s.authorize(ctx, authz.ResourceGroup, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	if name == "" || len(name) > 50 {
		return nil, validate.Violations{"Group name must be between 1 and 50 characters long."}
	}

	group := &models.Group{Name: name}

	if err := s.dbFromContext(ctx).Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validate.Violations{"Group name is already taken."}
		}

		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	if err := s.authorize(ctx, authz.ResourceGroup, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	var group models.Group

	if err := s.dbFromContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	if err := s.authorize(ctx, authz.ResourceGroup, authz.ActionList, nil); err != nil {
		return nil, err
	}

	var groups []models.Group

	if err := s.dbFromContext(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, nil
}

func (s *GroupService) UpdateGroup(ctx context.Context, id uint, name string) (*models.Group, error) {
	if err := s.authorize(ctx, authz.ResourceGroup, authz.ActionUpdate, nil); err != nil {
		return nil, err
	}

	if name == "" || len(name) > 50 {
		return nil, validate.Violations{"Group name must be between 1 and 50 characters long."}
	}

	var group models.Group

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get group: %w", err)
		}

		group.Name = name

		if err := tx.Save(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validate.Violations{"Group name is already taken."}
			}

			return fmt.Errorf("failed to update group: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, id uint) error {
	if err := s.authorize(ctx, authz.ResourceGroup, authz.ActionDestroy, nil); err != nil {
		return err
	}

	res := s.dbFromContext(ctx).Delete(&models.Group{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete group: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func ConvertGroupToGroupInfo(group *models.Group) *objects.GroupInfo {
	return &objects.GroupInfo{
		ID:   group.ID,
		Name: group.Name,
	}
}
