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

type ProfileServiceParams struct {
	fx.In

	DB              *gorm.DB
	ImageURLChecker validate.ImageURLChecker
}

func NewProfileService(params ProfileServiceParams) *ProfileService {
	return &ProfileService{
		AbstractService: &AbstractService{db: params.DB},
		imageChecker:    params.ImageURLChecker,
	}
}

// ProfileService manages the public face of accounts. Profiles are created
// and destroyed with their owning user, never directly; only update is
// exposed, to the owner.
type ProfileService struct {
	*AbstractService

	imageChecker validate.ImageURLChecker
}

type UpdateProfileInput struct {
	Pic *string
	Bio *string
}

func (s *ProfileService) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	if err := s.authorize(ctx, authz.ResourceProfile, authz.ActionRead, nil); err != nil {
		return nil, err
	}

	var profile models.Profile

	err := s.dbFromContext(ctx).
		Preload("Owner").
		First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	if err := s.authorize(ctx, authz.ResourceProfile, authz.ActionList, nil); err != nil {
		return nil, err
	}

	var profiles []models.Profile

	err := s.dbFromContext(ctx).
		Preload("Owner").
		Joins("JOIN users ON users.id = profiles.owner_id").
		Order("users.username").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

// CreateProfile always reports method-not-allowed: a profile only exists
// as part of its user.
func (s *ProfileService) CreateProfile(ctx context.Context) error {
	return ErrMethodNotAllowed
}

// DeleteProfile always reports method-not-allowed: profiles are removed
// with their user.
func (s *ProfileService) DeleteProfile(ctx context.Context, id uint) error {
	return ErrMethodNotAllowed
}

func (s *ProfileService) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.Profile, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	var profile models.Profile

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.Preload("Owner").First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get profile: %w", err)
		}

		if err := s.authorize(ctx, authz.ResourceProfile, authz.ActionUpdate, &profile.OwnerID); err != nil {
			return err
		}

		if input.Pic != nil {
			if *input.Pic != "" {
				if err := s.imageChecker.CheckImageURL(ctx, *input.Pic); err != nil {
					return err
				}
			}

			profile.Pic = *input.Pic
		}

		if input.Bio != nil {
			if len(*input.Bio) > 300 {
				return validate.Violations{"Bio must be at most 300 characters long."}
			}

			profile.Bio = *input.Bio
		}

		if err := tx.Save(&profile).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// FollowProfile adds the caller to the followers of a profile. Following
// is idempotent; following your own profile is rejected.
func (s *ProfileService) FollowProfile(ctx context.Context, id uint) error {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}

	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		var profile models.Profile

		if err := tx.First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get profile: %w", err)
		}

		if profile.OwnerID == actor.UserID {
			return validate.Violations{"You cannot follow your own profile."}
		}

		follower := &models.User{ID: actor.UserID}

		if err := tx.Model(&profile).Association("Followers").Append(follower); err != nil {
			return fmt.Errorf("failed to follow profile: %w", err)
		}

		return nil
	})
}

// UnfollowProfile removes the caller from the followers of a profile.
func (s *ProfileService) UnfollowProfile(ctx context.Context, id uint) error {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}

	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		var profile models.Profile

		if err := tx.First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get profile: %w", err)
		}

		follower := &models.User{ID: actor.UserID}

		if err := tx.Model(&profile).Association("Followers").Delete(follower); err != nil {
			return fmt.Errorf("failed to unfollow profile: %w", err)
		}

		return nil
	})
}

func (s *ProfileService) followerCount(ctx context.Context, profileID uint) int64 {
	return s.dbFromContext(ctx).
		Model(&models.Profile{ID: profileID}).
		Association("Followers").
		Count()
}

// ConvertProfileToProfileInfo converts a profile entity and its follower
// count to the API representation.
func (s *ProfileService) ConvertProfileToProfileInfo(ctx context.Context, profile *models.Profile) *objects.ProfileInfo {
	info := &objects.ProfileInfo{
		ID:            profile.ID,
		Pic:           profile.Pic,
		Bio:           profile.Bio,
		FollowerCount: int(s.followerCount(ctx, profile.ID)),
	}

	if profile.Owner != nil {
		info.Owner = profile.Owner.Username
	}

	return info
}
