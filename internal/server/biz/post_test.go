package biz

import (
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

func newTestPostService(t *testing.T) (*PostService, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)
	svc := NewPostService(PostServiceParams{
		DB:              conn,
		ImageURLChecker: validate.NopImageURLChecker{},
	})

	return svc, conn
}

func TestPostService_CreatePost(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "post-author", authz.RoleAuthor)
	commenter := createTestUser(t, conn, "post-commenter", authz.RoleCommenter)
	tag := createTestTag(t, conn, "golang")

	t.Run("author creates a draft", func(t *testing.T) {
		post, err := svc.CreatePost(identityCtx(author), CreatePostInput{
			Title:  "An adequately long post title",
			TagIDs: []uint{tag.ID},
		})
		require.NoError(t, err)
		assert.False(t, post.Published())
		assert.Equal(t, author.ID, *post.OwnerID)
	})

	t.Run("commenter is forbidden", func(t *testing.T) {
		_, err := svc.CreatePost(identityCtx(commenter), CreatePostInput{
			Title: "An adequately long post title",
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := svc.CreatePost(anonymousCtx(), CreatePostInput{
			Title: "An adequately long post title",
		})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("publishing requires thumbnail, content, and a tag", func(t *testing.T) {
		_, err := svc.CreatePost(identityCtx(author), CreatePostInput{
			Title:   "An adequately long post title",
			Publish: true,
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
		assert.Contains(t, v.Messages(), "A published post must have a thumbnail.")
		assert.Contains(t, v.Messages(), "A published post must have content.")
	})

	t.Run("publishing a complete post works", func(t *testing.T) {
		post, err := svc.CreatePost(identityCtx(author), CreatePostInput{
			Title:     "Another adequately long title",
			Thumbnail: "https://example.com/thumb.png",
			Content:   testPostContent(),
			Publish:   true,
			TagIDs:    []uint{tag.ID},
		})
		require.NoError(t, err)
		assert.True(t, post.Published())
	})
}

func TestPostService_Visibility(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "vis-author", authz.RoleAuthor)
	stranger := createTestUser(t, conn, "vis-stranger", authz.RoleCommenter)

	draft := createTestPost(t, conn, author, false)
	published := createTestPost(t, conn, author, true)

	t.Run("anonymous listing excludes drafts", func(t *testing.T) {
		posts, err := svc.ListPosts(anonymousCtx())
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, published.ID, posts[0].ID)
	})

	t.Run("owner listing includes own drafts", func(t *testing.T) {
		posts, err := svc.ListPosts(identityCtx(author))
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("another user's draft reads as missing", func(t *testing.T) {
		_, err := svc.GetPost(identityCtx(stranger), draft.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner can read own draft", func(t *testing.T) {
		got, err := svc.GetPost(identityCtx(author), draft.ID)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, got.ID)
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "upd-author", authz.RoleAuthor)
	otherAuthor := createTestUser(t, conn, "upd-other", authz.RoleAuthor)
	moderator := createTestUser(t, conn, "upd-moderator", authz.RoleModerator)

	post := createTestPost(t, conn, author, true)
	tagIDs := lo.Map(post.Tags, func(t models.Tag, _ int) uint { return t.ID })

	input := UpdatePostInput{
		Title:     "A replacement title of valid length",
		Thumbnail: post.Thumbnail,
		Content:   post.Content,
		Publish:   true,
		TagIDs:    tagIDs,
	}

	t.Run("owner updates", func(t *testing.T) {
		got, err := svc.UpdatePost(identityCtx(author), post.ID, input)
		require.NoError(t, err)
		assert.Equal(t, input.Title, got.Title)
	})

	t.Run("another author is forbidden", func(t *testing.T) {
		_, err := svc.UpdatePost(identityCtx(otherAuthor), post.ID, input)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("moderator may update", func(t *testing.T) {
		_, err := svc.UpdatePost(identityCtx(moderator), post.ID, input)
		require.NoError(t, err)
	})

	t.Run("unpublishing a post clears the publish date", func(t *testing.T) {
		unpublish := input
		unpublish.Publish = false

		got, err := svc.UpdatePost(identityCtx(author), post.ID, unpublish)
		require.NoError(t, err)
		assert.False(t, got.Published())
	})

	t.Run("updating someone else's draft is masked", func(t *testing.T) {
		draft := createTestPost(t, conn, author, false)

		_, err := svc.UpdatePost(identityCtx(otherAuthor), draft.ID, input)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostService_TagMembership(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "tag-author", authz.RoleAuthor)
	post := createTestPost(t, conn, author, true)
	ctx := identityCtx(author)

	t.Run("add and remove a tag", func(t *testing.T) {
		extra := createTestTag(t, conn, "extra-tag")

		got, err := svc.AddPostTag(ctx, post.ID, extra.ID)
		require.NoError(t, err)
		assert.Len(t, got.Tags, 2)

		got, err = svc.RemovePostTag(ctx, post.ID, extra.ID)
		require.NoError(t, err)
		assert.Len(t, got.Tags, 1)
	})

	t.Run("cannot exceed the tag limit incrementally", func(t *testing.T) {
		for i := 0; i < validate.PostMaxTags-1; i++ {
			tag := createTestTag(t, conn, fmt.Sprintf("filler-%d", i))

			_, err := svc.AddPostTag(ctx, post.ID, tag.ID)
			require.NoError(t, err)
		}

		overflow := createTestTag(t, conn, "overflow")

		_, err := svc.AddPostTag(ctx, post.ID, overflow.ID)

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})

	t.Run("cannot strip a published post of its last tag", func(t *testing.T) {
		solo := createTestPost(t, conn, author, true)

		_, err := svc.RemovePostTag(ctx, solo.ID, solo.Tags[0].ID)

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "del-author", authz.RoleAuthor)
	stranger := createTestUser(t, conn, "del-stranger", authz.RoleAuthor)
	post := createTestPost(t, conn, author, true)

	t.Run("non-owner author is forbidden", func(t *testing.T) {
		err := svc.DeletePost(identityCtx(stranger), post.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.DeletePost(identityCtx(author), post.ID))

		_, err := svc.GetPost(identityCtx(author), post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostService_ConvertPostsToPostInfos(t *testing.T) {
	svc, conn := newTestPostService(t)

	author := createTestUser(t, conn, "conv-author", authz.RoleAuthor)
	liker := createTestUser(t, conn, "conv-liker")
	disliker := createTestUser(t, conn, "conv-disliker")

	post := createTestPost(t, conn, author, true)

	require.NoError(t, conn.Create(&models.Reaction{
		OwnerID: liker.ID,
		Type:    models.ReactionLike,
		PostID:  &post.ID,
	}).Error)
	require.NoError(t, conn.Create(&models.Reaction{
		OwnerID: disliker.ID,
		Type:    models.ReactionDislike,
		PostID:  &post.ID,
	}).Error)

	loaded, err := svc.GetPost(anonymousCtx(), post.ID)
	require.NoError(t, err)

	info, err := svc.ConvertPostToPostInfo(anonymousCtx(), loaded)
	require.NoError(t, err)
	assert.Equal(t, "conv-author", info.Owner)
	assert.EqualValues(t, 1, info.LikeCount)
	assert.EqualValues(t, 1, info.DislikeCount)
	assert.Len(t, info.Tags, 1)
}
