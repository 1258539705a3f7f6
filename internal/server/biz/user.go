package biz

import (
	"context"
	"errors"
	"fmt"
	"slices"

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

type UserServiceParams struct {
	fx.In

	DB *gorm.DB
}

func NewUserService(params UserServiceParams) *UserService {
	return &UserService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

type UserService struct {
	*AbstractService
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

type UpdateUserInput struct {
	Username string
	Email    string
	Password *string
}

// PatchUserInput carries a partial update. Fields lists the JSON keys
// present in the payload; the self-escalation guard inspects it.
type PatchUserInput struct {
	Fields   []string
	Username *string
	Email    *string
	Password *string
	Groups   *[]string
}

// CreateUser registers a new account. Two post-creation hooks run
// synchronously in the same transaction: the default commenter role is
// assigned and an empty profile is created.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := validateUserFields(input.Username, input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashedPassword,
	}

	err = s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validate.Violations{"Username is already taken."}
			}

			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := s.assignDefaultGroups(ctx, user); err != nil {
			return err
		}

		return s.createProfile(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Debug(ctx, "user created", log.Uint("user_id", user.ID))

	return user, nil
}

// assignDefaultGroups is the explicit replacement for the implicit
// post-save signal of old revisions: every new account starts as a
// commenter.
func (s *UserService) assignDefaultGroups(ctx context.Context, user *models.User) error {
	tx := s.dbFromContext(ctx)

	var commenter models.Group

	err := tx.Where("name = ?", authz.RoleCommenter).First(&commenter).Error
	if err != nil {
		return fmt.Errorf("failed to load default group: %w", err)
	}

	if err := tx.Model(user).Association("Groups").Append(&commenter); err != nil {
		return fmt.Errorf("failed to assign default group: %w", err)
	}

	return nil
}

func (s *UserService) createProfile(ctx context.Context, user *models.User) error {
	profile := &models.Profile{OwnerID: user.ID}

	if err := s.dbFromContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetUser returns a user record, masking invisible accounts as not-found.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	if !authz.UserVisible(actor, id) {
		return nil, ErrNotFound
	}

	var user models.User

	err := s.dbFromContext(ctx).Preload("Groups").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		log.Error(ctx, "failed to get user", log.Cause(err))

		return nil, ErrInternal
	}

	return &user, nil
}

// ListUsers lists the accounts visible to the caller: moderators and
// administrators see everyone, other users see only themselves.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := s.authorize(ctx, authz.ResourceUser, authz.ActionList, nil); err != nil {
		return nil, err
	}

	actor := authz.IdentityFromContext(ctx)

	var users []models.User

	err := s.dbFromContext(ctx).
		Scopes(db.VisibleUsers(actor)).
		Preload("Groups").
		Order("users.username").
		Find(&users).Error
	if err != nil {
		log.Error(ctx, "failed to list users", log.Cause(err))
		return nil, ErrInternal
	}

	return users, nil
}

// UpdateUser replaces the mutable account fields. Only the account owner
// and administrators may fully update; for everyone else the record is
// reported as not-found.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	if err := s.authorize(ctx, authz.ResourceUser, authz.ActionUpdate, &id); err != nil {
		// The record may exist, but a caller who cannot fully update it
		// is handled as if it did not.
		return nil, ErrNotFound
	}

	password := ""
	if input.Password != nil {
		password = *input.Password
	}

	if err := validateUserFields(input.Username, password); err != nil {
		return nil, err
	}

	var user models.User

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.Preload("Groups").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get user: %w", err)
		}

		user.Username = input.Username
		user.Email = input.Email

		if input.Password != nil {
			hashedPassword, err := HashPassword(*input.Password)
			if err != nil {
				return err
			}

			user.Password = hashedPassword
		}

		if err := tx.Omit("Groups").Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validate.Violations{"Username is already taken."}
			}

			return fmt.Errorf("failed to update user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// PatchUser applies a partial update. Moderators may patch other
// accounts, but only their group sets, and never moderator membership
// itself; a patch the guard rejects is masked as not-found.
func (s *UserService) PatchUser(ctx context.Context, id uint, input PatchUserInput) (*models.User, error) {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return nil, ErrUnauthenticated
	}

	if err := s.authorize(ctx, authz.ResourceUser, authz.ActionPartialUpdate, &id); err != nil {
		return nil, ErrNotFound
	}

	var user models.User

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		tx := s.dbFromContext(ctx)

		if err := tx.Preload("Groups").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to get user: %w", err)
		}

		currentGroups := user.GroupNames()

		patchedGroups := currentGroups
		if input.Groups != nil {
			patchedGroups = *input.Groups
		}

		if !authz.GroupPatchAllowed(actor, id, input.Fields, currentGroups, patchedGroups) {
			return ErrNotFound
		}

		if slices.Contains(input.Fields, "groups") {
			// Role changes are reserved for moderators and administrators,
			// even on the caller's own account.
			if !actor.IsSystem() && !actor.IsAdmin && !actor.HasRole(authz.RoleModerator) {
				return ErrPermissionDenied
			}

			if err := s.replaceGroups(ctx, &user, patchedGroups); err != nil {
				return err
			}
		}

		if input.Username != nil {
			user.Username = *input.Username
		}

		if input.Email != nil {
			user.Email = *input.Email
		}

		if input.Password != nil {
			hashedPassword, err := HashPassword(*input.Password)
			if err != nil {
				return err
			}

			user.Password = hashedPassword
		}

		if err := validateUserFields(user.Username, ""); err != nil {
			return err
		}

		if err := tx.Omit("Groups").Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validate.Violations{"Username is already taken."}
			}

			return fmt.Errorf("failed to update user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserService) replaceGroups(ctx context.Context, user *models.User, names []string) error {
	tx := s.dbFromContext(ctx)

	var groups []models.Group

	if len(names) > 0 {
		if err := tx.Where("name IN ?", names).Find(&groups).Error; err != nil {
			return fmt.Errorf("failed to load groups: %w", err)
		}
	}

	if len(groups) != len(lo.Uniq(names)) {
		known := lo.Map(groups, func(g models.Group, _ int) string { return g.Name })
		missing, _ := lo.Difference(lo.Uniq(names), known)

		return validate.Violations{fmt.Sprintf("Unknown groups: %v.", missing)}
	}

	groupPtrs := lo.Map(groups, func(g models.Group, _ int) *models.Group { return lo.ToPtr(g) })

	if err := tx.Model(user).Association("Groups").Replace(groupPtrs); err != nil {
		return fmt.Errorf("failed to replace groups: %w", err)
	}

	user.Groups = groups

	return nil
}

// DeleteUser removes an account. The owner must confirm with their
// password; administrators delete without confirmation. Moderators can
// see the record but may not delete it.
func (s *UserService) DeleteUser(ctx context.Context, id uint, currentPassword string) error {
	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() && !actor.IsSystem() {
		return ErrUnauthenticated
	}

	if !authz.UserVisible(actor, id) {
		return ErrNotFound
	}

	if err := s.authorize(ctx, authz.ResourceUser, authz.ActionDestroy, &id); err != nil {
		return err
	}

	var user models.User

	err := s.dbFromContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to get user: %w", err)
	}

	if actor.Authenticated() && actor.UserID == id {
		if err := VerifyPassword(user.Password, currentPassword); err != nil {
			return validate.Violations{"Invalid password."}
		}
	}

	// Profile, group memberships, and reactions cascade at the storage
	// layer; posts and comments keep their rows with a null owner.
	if err := s.dbFromContext(ctx).Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Debug(ctx, "user deleted", log.Uint("user_id", id))

	return nil
}

func validateUserFields(username, password string) error {
	var v validate.Violations

	if username == "" || len(username) > 150 {
		v = append(v, "Username must be between 1 and 150 characters long.")
	}

	if password != "" && len(password) < 8 {
		v = append(v, "Password must be at least 8 characters long.")
	}

	if len(v) > 0 {
		return v
	}

	return nil
}

// ConvertUserToUserInfo converts a user entity to its API representation.
func ConvertUserToUserInfo(user *models.User) *objects.UserInfo {
	return &objects.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		Groups:    user.GroupNames(),
		CreatedAt: user.CreatedAt,
	}
}
