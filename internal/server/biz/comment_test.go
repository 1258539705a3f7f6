package biz

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

func newTestCommentService(t *testing.T) (*CommentService, *gorm.DB) {
	t.Helper()

	conn := newTestDB(t)

	return NewCommentService(CommentServiceParams{DB: conn}), conn
}

func TestCommentService_CreateComment(t *testing.T) {
	svc, conn := newTestCommentService(t)

	author := createTestUser(t, conn, "cmt-author", authz.RoleAuthor, authz.RoleCommenter)
	commenter := createTestUser(t, conn, "cmt-commenter", authz.RoleCommenter)

	published := createTestPost(t, conn, author, true)
	draft := createTestPost(t, conn, author, false)

	t.Run("commenter comments on a published post", func(t *testing.T) {
		comment, err := svc.CreateComment(identityCtx(commenter), CreateCommentInput{
			PostID:  published.ID,
			Content: "nice write-up",
		})
		require.NoError(t, err)
		assert.Equal(t, commenter.ID, *comment.OwnerID)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := svc.CreateComment(anonymousCtx(), CreateCommentInput{
			PostID:  published.ID,
			Content: "drive-by",
		})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("commenting on a private post is a violation", func(t *testing.T) {
		// Even for the post's owner: drafts take no comments.
		_, err := svc.CreateComment(identityCtx(author), CreateCommentInput{
			PostID:  draft.ID,
			Content: "note to self",
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
		assert.Contains(t, v.Messages(), "A comment cannot be made on a private post.")
	})

	t.Run("reply to a top-level comment", func(t *testing.T) {
		parent := createTestComment(t, conn, commenter, published)

		reply, err := svc.CreateComment(identityCtx(author), CreateCommentInput{
			PostID:    published.ID,
			Content:   "thanks!",
			ReplyToID: &parent.ID,
		})
		require.NoError(t, err)
		assert.True(t, reply.IsReply())
	})

	t.Run("reply to a reply is a violation", func(t *testing.T) {
		parent := createTestComment(t, conn, commenter, published)

		reply, err := svc.CreateComment(identityCtx(author), CreateCommentInput{
			PostID:    published.ID,
			Content:   "thanks!",
			ReplyToID: &parent.ID,
		})
		require.NoError(t, err)

		_, err = svc.CreateComment(identityCtx(commenter), CreateCommentInput{
			PostID:    published.ID,
			Content:   "you are welcome",
			ReplyToID: &reply.ID,
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})

	t.Run("reply must stay on the same post", func(t *testing.T) {
		otherPost := createTestPost(t, conn, author, true)
		parent := createTestComment(t, conn, commenter, published)

		_, err := svc.CreateComment(identityCtx(commenter), CreateCommentInput{
			PostID:    otherPost.ID,
			Content:   "crossing over",
			ReplyToID: &parent.ID,
		})

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})
}

func TestCommentService_Visibility(t *testing.T) {
	svc, conn := newTestCommentService(t)

	author := createTestUser(t, conn, "cvis-author", authz.RoleAuthor, authz.RoleCommenter)
	stranger := createTestUser(t, conn, "cvis-stranger", authz.RoleCommenter)

	draft := createTestPost(t, conn, author, false)
	published := createTestPost(t, conn, author, true)

	draftComment := createTestComment(t, conn, author, draft)
	publicComment := createTestComment(t, conn, stranger, published)

	t.Run("anonymous sees only comments on published posts", func(t *testing.T) {
		comments, err := svc.ListComments(anonymousCtx(), nil)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, publicComment.ID, comments[0].ID)
	})

	t.Run("post owner sees comments on own draft", func(t *testing.T) {
		comments, err := svc.ListComments(identityCtx(author), lo.ToPtr(draft.ID))
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("draft comment reads as missing to strangers", func(t *testing.T) {
		_, err := svc.GetComment(identityCtx(stranger), draftComment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentService_UpdateComment(t *testing.T) {
	svc, conn := newTestCommentService(t)

	commenter := createTestUser(t, conn, "cupd-owner", authz.RoleCommenter)
	other := createTestUser(t, conn, "cupd-other", authz.RoleCommenter)
	moderator := createTestUser(t, conn, "cupd-moderator", authz.RoleModerator)
	author := createTestUser(t, conn, "cupd-author", authz.RoleAuthor)

	post := createTestPost(t, conn, author, true)
	comment := createTestComment(t, conn, commenter, post)

	t.Run("owner edits content", func(t *testing.T) {
		got, err := svc.UpdateComment(identityCtx(commenter), comment.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
	})

	t.Run("another commenter is forbidden", func(t *testing.T) {
		_, err := svc.UpdateComment(identityCtx(other), comment.ID, "hijack")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("moderator edits", func(t *testing.T) {
		_, err := svc.UpdateComment(identityCtx(moderator), comment.ID, "moderated")
		require.NoError(t, err)
	})

	t.Run("empty content is a violation", func(t *testing.T) {
		_, err := svc.UpdateComment(identityCtx(commenter), comment.ID, "")

		var v validate.Violations

		require.ErrorAs(t, err, &v)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	svc, conn := newTestCommentService(t)

	commenter := createTestUser(t, conn, "cdel-owner", authz.RoleCommenter)
	author := createTestUser(t, conn, "cdel-author", authz.RoleAuthor)
	post := createTestPost(t, conn, author, true)
	comment := createTestComment(t, conn, commenter, post)

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		err := svc.DeleteComment(anonymousCtx(), comment.ID)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.DeleteComment(identityCtx(commenter), comment.ID))

		_, err := svc.GetComment(identityCtx(commenter), comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
