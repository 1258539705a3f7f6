package db

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", testDBSeq.Add(1))

	return New(Config{Dialect: "sqlite", DSN: dsn})
}

func seedUser(t *testing.T, conn *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Password: "x"}
	require.NoError(t, conn.Create(user).Error)

	return user
}

func seedPost(t *testing.T, conn *gorm.DB, owner *models.User, published bool) *models.Post {
	t.Helper()

	post := &models.Post{
		OwnerID: &owner.ID,
		Title:   fmt.Sprintf("Seeded post %s %v", owner.Username, published),
	}
	if published {
		post.PublishDate = lo.ToPtr(time.Now().UTC())
	}

	require.NoError(t, conn.Create(post).Error)

	return post
}

func seedComment(t *testing.T, conn *gorm.DB, owner *models.User, post *models.Post) *models.Comment {
	t.Helper()

	comment := &models.Comment{OwnerID: &owner.ID, PostID: post.ID, Content: "Seeded."}
	require.NoError(t, conn.Create(comment).Error)

	return comment
}

func seedReaction(t *testing.T, conn *gorm.DB, owner *models.User, post *models.Post, comment *models.Comment) *models.Reaction {
	t.Helper()

	reaction := &models.Reaction{OwnerID: owner.ID, Type: models.ReactionLike}
	if post != nil {
		reaction.PostID = &post.ID
	}

	if comment != nil {
		reaction.CommentID = &comment.ID
	}

	require.NoError(t, conn.Create(reaction).Error)

	return reaction
}

func identityOf(user *models.User) authz.Identity {
	return authz.Identity{Type: authz.IdentityTypeUser, UserID: user.ID, Username: user.Username}
}

// The scopes here and the row predicates in package authz express the same
// rule twice, once in SQL and once in Go. Each subtest lists through the
// scope and re-derives the expected rows by running every seeded row through
// the predicate, for a spread of identities.
func TestScopesAgreeWithRowPredicates(t *testing.T) {
	conn := newTestDB(t)

	owner := seedUser(t, conn, "scope-owner")
	stranger := seedUser(t, conn, "scope-stranger")

	draft := seedPost(t, conn, owner, false)
	published := seedPost(t, conn, owner, true)

	draftComment := seedComment(t, conn, stranger, draft)
	publicComment := seedComment(t, conn, stranger, published)

	seedReaction(t, conn, owner, draft, nil)
	seedReaction(t, conn, stranger, published, nil)
	seedReaction(t, conn, owner, nil, draftComment)
	seedReaction(t, conn, stranger, nil, publicComment)

	identities := map[string]authz.Identity{
		"anonymous": {Type: authz.IdentityTypeAnonymous},
		"owner":     identityOf(owner),
		"stranger":  identityOf(stranger),
		"system":    {Type: authz.IdentityTypeSystem},
	}

	for name, id := range identities {
		t.Run("posts/"+name, func(t *testing.T) {
			var all []models.Post
			require.NoError(t, conn.Find(&all).Error)

			expected := lo.FilterMap(all, func(p models.Post, _ int) (uint, bool) {
				return p.ID, authz.PostVisible(id, &p)
			})

			var scoped []models.Post
			require.NoError(t, conn.Scopes(VisiblePosts(id)).Find(&scoped).Error)

			got := lo.Map(scoped, func(p models.Post, _ int) uint { return p.ID })
			assert.ElementsMatch(t, expected, got)
		})

		t.Run("comments/"+name, func(t *testing.T) {
			var all []models.Comment
			require.NoError(t, conn.Preload("Post").Find(&all).Error)

			expected := lo.FilterMap(all, func(c models.Comment, _ int) (uint, bool) {
				return c.ID, authz.CommentVisible(id, &c)
			})

			var scoped []models.Comment
			require.NoError(t, conn.Scopes(VisibleComments(id)).Find(&scoped).Error)

			got := lo.Map(scoped, func(c models.Comment, _ int) uint { return c.ID })
			assert.ElementsMatch(t, expected, got)
		})

		t.Run("reactions/"+name, func(t *testing.T) {
			var all []models.Reaction
			require.NoError(t, conn.Preload("Post").Preload("Comment.Post").Find(&all).Error)

			expected := lo.FilterMap(all, func(r models.Reaction, _ int) (uint, bool) {
				return r.ID, authz.ReactionVisible(id, &r)
			})

			var scoped []models.Reaction
			require.NoError(t, conn.Scopes(VisibleReactions(id)).Find(&scoped).Error)

			got := lo.Map(scoped, func(r models.Reaction, _ int) uint { return r.ID })
			assert.ElementsMatch(t, expected, got)
		})

		t.Run("users/"+name, func(t *testing.T) {
			var all []models.User
			require.NoError(t, conn.Find(&all).Error)

			expected := lo.FilterMap(all, func(u models.User, _ int) (uint, bool) {
				return u.ID, authz.UserVisible(id, u.ID)
			})

			var scoped []models.User
			require.NoError(t, conn.Scopes(VisibleUsers(id)).Find(&scoped).Error)

			got := lo.Map(scoped, func(u models.User, _ int) uint { return u.ID })
			assert.ElementsMatch(t, expected, got)
		})
	}
}

func TestMigrateSeedsRoleGroups(t *testing.T) {
	conn := newTestDB(t)

	var groups []models.Group
	require.NoError(t, conn.Order("name").Find(&groups).Error)

	names := lo.Map(groups, func(g models.Group, _ int) string { return g.Name })
	assert.Equal(t, []string{authz.RoleAuthor, authz.RoleCommenter, authz.RoleModerator}, names)
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := newTestDB(t)

	require.NoError(t, Migrate(conn))

	var count int64
	require.NoError(t, conn.Model(&models.Group{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
