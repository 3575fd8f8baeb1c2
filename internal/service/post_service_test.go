package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"essay-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type postFixture struct {
	posts    *MockPostRepository
	essays   *MockEssayRepository
	users    *MockUserRepository
	tx       *MockTransactionManager
	notifier *recordingNotifier
	svc      PostService
}

func newPostFixture() *postFixture {
	f := &postFixture{
		posts:    new(MockPostRepository),
		essays:   new(MockEssayRepository),
		users:    new(MockUserRepository),
		tx:       &MockTransactionManager{},
		notifier: &recordingNotifier{},
	}
	f.svc = NewPostService(f.posts, f.essays, f.users, f.tx, f.notifier)
	return f
}

func evaluatedEssay(owner string) *domain.Essay {
	return &domain.Essay{
		ID:         "essay-1",
		UserID:     owner,
		Title:      "Transit",
		Status:     domain.EssayStatusCompleted,
		Evaluation: &domain.EssayEvaluation{Score: 82},
	}
}

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newPostFixture()
		f.essays.On("GetEssayByID", mock.Anything, "essay-1").Return(evaluatedEssay("alice"), nil)
		f.users.On("GetUserByID", mock.Anything, "alice").Return(&domain.User{ID: "alice", Name: "Alice"}, nil)
		f.posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
			return p.AuthorID == "alice" && p.EssayScore == 82 && p.Visibility == domain.VisibilityPublic
		})).Return(nil)

		post, err := f.svc.CreatePost(ctx, "alice", "essay-1", "  my best one  ", "")
		require.NoError(t, err)
		assert.Equal(t, "my best one", post.Caption)
		assert.Equal(t, "Alice", post.AuthorName)
		assert.Equal(t, "Transit", post.EssayTitle)
		f.posts.AssertExpectations(t)
	})

	t.Run("invalid visibility", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.CreatePost(ctx, "alice", "essay-1", "", "secret")

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "visibility", verrs[0].Field)
	})

	t.Run("caption too long", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.CreatePost(ctx, "alice", "essay-1", strings.Repeat("a", maxCaptionLength+1), domain.VisibilityFriends)

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, domain.CodeOutOfRange, verrs[0].Code)
	})

	t.Run("someone else's essay", func(t *testing.T) {
		f := newPostFixture()
		f.essays.On("GetEssayByID", mock.Anything, "essay-1").Return(evaluatedEssay("bob"), nil)

		_, err := f.svc.CreatePost(ctx, "alice", "essay-1", "", domain.VisibilityPublic)
		assert.True(t, domain.HasCode(err, domain.CodeEssayNotFound))
	})

	t.Run("essay not evaluated", func(t *testing.T) {
		f := newPostFixture()
		essay := evaluatedEssay("alice")
		essay.Status = domain.EssayStatusEvaluating
		essay.Evaluation = nil
		f.essays.On("GetEssayByID", mock.Anything, "essay-1").Return(essay, nil)

		_, err := f.svc.CreatePost(ctx, "alice", "essay-1", "", domain.VisibilityPublic)
		assert.True(t, domain.HasCode(err, domain.CodeEssayNotEvaluated))
		f.posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
	})
}

func TestPostService_GetPost_Hidden(t *testing.T) {
	f := newPostFixture()
	f.posts.On("GetVisiblePost", mock.Anything, "p1", "carol").Return(nil, nil)

	_, err := f.svc.GetPost(context.Background(), "carol", "p1")
	assert.True(t, domain.HasCode(err, domain.CodePostNotFound))
}

func TestPostService_Like(t *testing.T) {
	ctx := context.Background()

	t.Run("first like increments and notifies", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice", LikesCount: 2}, nil)
		f.posts.On("AddLike", mock.Anything, "p1", "bob").Return(true, nil)
		f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterLikes, 1).Return(nil)

		post, err := f.svc.Like(ctx, "bob", "p1")
		require.NoError(t, err)
		assert.Equal(t, 3, post.LikesCount)
		assert.True(t, post.LikedByViewer)

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, "alice", f.notifier.sent[0].UserID)
		assert.Equal(t, domain.NotificationLike, f.notifier.sent[0].Type)
	})

	t.Run("repeat like is a no-op", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice", LikesCount: 3}, nil)
		f.posts.On("AddLike", mock.Anything, "p1", "bob").Return(false, nil)

		post, err := f.svc.Like(ctx, "bob", "p1")
		require.NoError(t, err)
		assert.Equal(t, 3, post.LikesCount)
		assert.True(t, post.LikedByViewer)
		f.posts.AssertNotCalled(t, "IncrementCounter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("own post does not notify", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "alice").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
		f.posts.On("AddLike", mock.Anything, "p1", "alice").Return(true, nil)
		f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterLikes, 1).Return(nil)

		_, err := f.svc.Like(ctx, "alice", "p1")
		require.NoError(t, err)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("counter failure rolls back", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
		f.posts.On("AddLike", mock.Anything, "p1", "bob").Return(true, nil)
		f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterLikes, 1).Return(errors.New("deadlock"))

		_, err := f.svc.Like(ctx, "bob", "p1")
		assert.True(t, domain.HasCode(err, domain.CodeInternal))
		assert.True(t, f.tx.RolledBack)
		assert.Empty(t, f.notifier.sent)
	})
}

func TestPostService_Unlike(t *testing.T) {
	f := newPostFixture()
	f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice", LikesCount: 1, LikedByViewer: true}, nil)
	f.posts.On("RemoveLike", mock.Anything, "p1", "bob").Return(true, nil)
	f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterLikes, -1).Return(nil)

	post, err := f.svc.Unlike(context.Background(), "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, post.LikesCount)
	assert.False(t, post.LikedByViewer)
}

func TestPostService_Share(t *testing.T) {
	f := newPostFixture()
	f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
	f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterShares, 1).Return(nil)
	f.posts.On("MarkShared", mock.Anything, "p1", mock.Anything).Return(nil)

	post, err := f.svc.Share(context.Background(), "bob", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, post.SharesCount)
	assert.NotNil(t, post.SharedAt)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, domain.NotificationShare, f.notifier.sent[0].Type)
}

func TestPostService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("success notifies author with preview", func(t *testing.T) {
		f := newPostFixture()
		long := strings.Repeat("é", 150)
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
		f.users.On("GetUserByID", mock.Anything, "bob").Return(&domain.User{ID: "bob", Name: "Bob"}, nil)
		f.posts.On("CreateComment", mock.Anything, mock.AnythingOfType("*domain.Comment")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Comment).ID = "c1" }).Return(nil)
		f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterComments, 1).Return(nil)

		comment, err := f.svc.AddComment(ctx, "bob", "p1", long)
		require.NoError(t, err)
		assert.Equal(t, "c1", comment.ID)
		assert.Equal(t, "Bob", comment.UserName)

		require.Len(t, f.notifier.sent, 1)
		data := f.notifier.sent[0].Data
		assert.Equal(t, "c1", data["comment_id"])
		assert.Equal(t, strings.Repeat("é", 100)+"...", data["preview"])
	})

	t.Run("blank text", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.AddComment(ctx, "bob", "p1", "   ")

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, domain.CodeMissingField, verrs[0].Code)
	})

	t.Run("hidden post", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "carol").Return(nil, nil)

		_, err := f.svc.AddComment(ctx, "carol", "p1", "nice")
		assert.True(t, domain.HasCode(err, domain.CodePostNotFound))
	})
}

func TestPostService_DeleteComment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		comment  *domain.Comment
		wantCode domain.ErrorCode
	}{
		{name: "missing", comment: nil, wantCode: domain.CodeCommentNotFound},
		{name: "other post", comment: &domain.Comment{ID: "c1", PostID: "p2", UserID: "bob"}, wantCode: domain.CodeCommentNotFound},
		{name: "not the author", comment: &domain.Comment{ID: "c1", PostID: "p1", UserID: "carol"}, wantCode: domain.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostFixture()
			f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
			if tt.comment == nil {
				f.posts.On("GetComment", mock.Anything, "c1").Return(nil, nil)
			} else {
				f.posts.On("GetComment", mock.Anything, "c1").Return(tt.comment, nil)
			}

			err := f.svc.DeleteComment(ctx, "bob", "p1", "c1")
			assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
			f.posts.AssertNotCalled(t, "DeleteComment", mock.Anything, mock.Anything)
		})
	}

	t.Run("author deletes", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)
		f.posts.On("GetComment", mock.Anything, "c1").Return(&domain.Comment{ID: "c1", PostID: "p1", UserID: "bob"}, nil)
		f.posts.On("DeleteComment", mock.Anything, "c1").Return(nil)
		f.posts.On("IncrementCounter", mock.Anything, "p1", domain.CounterComments, -1).Return(nil)

		require.NoError(t, f.svc.DeleteComment(ctx, "bob", "p1", "c1"))
		f.posts.AssertExpectations(t)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	f := newPostFixture()
	f.posts.On("GetVisiblePost", mock.Anything, "p1", "bob").Return(&domain.Post{ID: "p1", AuthorID: "alice"}, nil)

	err := f.svc.DeletePost(context.Background(), "bob", "p1")
	assert.True(t, domain.HasCode(err, domain.CodeForbidden))
	f.posts.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything)
}

func TestPostService_Feed(t *testing.T) {
	f := newPostFixture()
	f.posts.On("ListPosts", mock.Anything, domain.PostFilter{ViewerID: "bob", Limit: maxPageLimit, Offset: 40}).
		Return([]*domain.Post{{ID: "p1"}}, nil)
	f.posts.On("ListPosts", mock.Anything, domain.PostFilter{ViewerID: "bob", AuthorID: "alice", Limit: defaultPageLimit}).
		Return([]*domain.Post{}, nil)

	feed, err := f.svc.Feed(context.Background(), "bob", 1000, 40)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	posts, err := f.svc.ListUserPosts(context.Background(), "bob", "alice", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
