package biz

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

func newTestProfileService(t *testing.T) (*ProfileService, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)
	svc := NewProfileService(ProfileServiceParams{
		DB:              conn,
		ImageURLChecker: validate.NopImageURLChecker{},
	})

	return svc, conn
}

func profileOf(t *testing.T, conn *gorm.DB, user *models.User) *models.Profile {
	t.Helper()

	var profile models.Profile

	require.NoError(t, conn.Where("owner_id = ?", user.ID).First(&profile).Error)

	return &profile
}

func TestProfileService_Read(t *testing.T) {
	svc, conn := newTestProfileService(t)

	user := createTestUser(t, conn, "profile-user")
	createTestUser(t, conn, "profile-other")

	t.Run("profiles are public", func(t *testing.T) {
		profiles, err := svc.ListProfiles(anonymousCtx())
		require.NoError(t, err)
		assert.Len(t, profiles, 2)

		got, err := svc.GetProfile(anonymousCtx(), profileOf(t, conn, user).ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.OwnerID)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := svc.GetProfile(anonymousCtx(), 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProfileService_LifecycleIsClosed(t *testing.T) {
	svc, conn := newTestProfileService(t)
	admin := createTestAdmin(t, conn, "profile-admin")

	assert.ErrorIs(t, svc.CreateProfile(identityCtx(admin)), ErrMethodNotAllowed)
	assert.ErrorIs(t, svc.DeleteProfile(identityCtx(admin), 1), ErrMethodNotAllowed)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	svc, conn := newTestProfileService(t)

	user := createTestUser(t, conn, "pupd-user")
	other := createTestUser(t, conn, "pupd-other")
	profile := profileOf(t, conn, user)

	t.Run("owner updates bio and pic", func(t *testing.T) {
		got, err := svc.UpdateProfile(identityCtx(user), profile.ID, UpdateProfileInput{
			Pic: lo.ToPtr("https://example.com/me.png"),
			Bio: lo.ToPtr("gopher"),
		})
		require.NoError(t, err)
		assert.Equal(t, "gopher", got.Bio)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := svc.UpdateProfile(identityCtx(other), profile.ID, UpdateProfileInput{
			Bio: lo.ToPtr("not yours"),
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := svc.UpdateProfile(anonymousCtx(), profile.ID, UpdateProfileInput{})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("bad image url is a violation", func(t *testing.T) {
		_, err := svc.UpdateProfile(identityCtx(user), profile.ID, UpdateProfileInput{
			Pic: lo.ToPtr("https://example.com/me.exe"),
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})

	t.Run("overlong bio is a violation", func(t *testing.T) {
		_, err := svc.UpdateProfile(identityCtx(user), profile.ID, UpdateProfileInput{
			Bio: lo.ToPtr(strings.Repeat("x", 301)),
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})
}

func TestProfileService_Follow(t *testing.T) {
	svc, conn := newTestProfileService(t)

	user := createTestUser(t, conn, "follow-user")
	fan := createTestUser(t, conn, "follow-fan")
	profile := profileOf(t, conn, user)

	t.Run("follow and unfollow", func(t *testing.T) {
		require.NoError(t, svc.FollowProfile(identityCtx(fan), profile.ID))

		got, err := svc.GetProfile(anonymousCtx(), profile.ID)
		require.NoError(t, err)

		info := svc.ConvertProfileToProfileInfo(anonymousCtx(), got)
		assert.Equal(t, 1, info.FollowerCount)

		require.NoError(t, svc.UnfollowProfile(identityCtx(fan), profile.ID))

		info = svc.ConvertProfileToProfileInfo(anonymousCtx(), got)
		assert.Equal(t, 0, info.FollowerCount)
	})

	t.Run("cannot follow own profile", func(t *testing.T) {
		err := svc.FollowProfile(identityCtx(user), profile.ID)

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})

	t.Run("anonymous cannot follow", func(t *testing.T) {
		err := svc.FollowProfile(anonymousCtx(), profile.ID)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}
