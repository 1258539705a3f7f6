package biz

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database with the schema migrated and
// the default groups seeded. Each call gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:biztest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn := db.New(db.Config{Dialect: "sqlite", DSN: dsn})
	require.NoError(t, db.Migrate(conn))

	return conn
}

const testPassword = "password-123"

func createTestUser(t *testing.T, conn *gorm.DB, username string, groups ...string) *models.User {
	t.Helper()

	hashed, err := HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
	}
	require.NoError(t, conn.Create(user).Error)

	for _, name := range groups {
		var group models.Group

		require.NoError(t, conn.Where("name = ?", name).First(&group).Error)
		require.NoError(t, conn.Model(user).Association("Groups").Append(&group))
	}

	require.NoError(t, conn.Create(&models.Profile{OwnerID: user.ID}).Error)

	return user
}

func createTestAdmin(t *testing.T, conn *gorm.DB, username string) *models.User {
	t.Helper()

	user := createTestUser(t, conn, username)
	user.IsAdmin = true
	require.NoError(t, conn.Model(user).Update("is_admin", true).Error)

	return user
}

func identityCtx(user *models.User) context.Context {
	return authz.NewIdentityContext(context.Background(), IdentityForUser(user))
}

func anonymousCtx() context.Context {
	return context.Background()
}

func createTestTag(t *testing.T, conn *gorm.DB, title string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Title: title}
	require.NoError(t, conn.Create(tag).Error)

	return tag
}

func createTestPost(t *testing.T, conn *gorm.DB, owner *models.User, published bool) *models.Post {
	t.Helper()

	tag := createTestTag(t, conn, fmt.Sprintf("tag%d", testDBSeq.Add(1)))

	post := &models.Post{
		OwnerID: lo.ToPtr(owner.ID),
		Title:   "A title long enough to pass",
		Content: "",
		Tags:    []models.Tag{*tag},
	}

	if published {
		post.Thumbnail = "https://example.com/thumb.png"
		post.Content = testPostContent()
		post.PublishDate = lo.ToPtr(time.Now().UTC())
	}

	require.NoError(t, conn.Create(post).Error)

	return post
}

func createTestComment(t *testing.T, conn *gorm.DB, owner *models.User, post *models.Post) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		OwnerID: lo.ToPtr(owner.ID),
		PostID:  post.ID,
		Content: "a comment",
	}
	require.NoError(t, conn.Create(comment).Error)

	return comment
}

// testPostContent returns content inside the allowed length band.
func testPostContent() string {
	content := ""
	for len(content) < validate.PostContentMinLen {
		content += "All work and no play makes for dull reading material. "
	}

	return content
}
