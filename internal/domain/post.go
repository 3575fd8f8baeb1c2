package domain

import (
	"context"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityFriends
}

// Post is a shared reference to an evaluated essay.
type Post struct {
	ID            string
	AuthorID      string
	AuthorName    string
	EssayID       string
	EssayTitle    string
	EssayScore    int
	Caption       string
	Visibility    Visibility
	LikesCount    int
	CommentsCount int
	SharesCount   int
	LikedByViewer bool
	CreatedAt     time.Time
	SharedAt      *time.Time
}

type Comment struct {
	ID        string
	PostID    string
	UserID    string
	UserName  string
	Text      string
	CreatedAt time.Time
}

// PostFilter narrows post listings. Visibility is always applied for ViewerID;
// an empty ViewerID sees public posts only.
type PostFilter struct {
	ViewerID    string
	AuthorID    string
	AuthorName  string
	TitleSearch string
	Limit       int
	Offset      int
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *Post) error
	// GetVisiblePost returns nil when the post is missing or hidden from viewerID.
	GetVisiblePost(ctx context.Context, postID, viewerID string) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error)
	DeletePost(ctx context.Context, postID string) error

	// AddLike reports false when the like already existed.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	IncrementCounter(ctx context.Context, postID string, counter PostCounter, delta int) error
	MarkShared(ctx context.Context, postID string, at time.Time) error

	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, commentID string) (*Comment, error)
	ListComments(ctx context.Context, postID string, limit int) ([]*Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
}

type PostCounter string

const (
	CounterLikes    PostCounter = "likes_count"
	CounterComments PostCounter = "comments_count"
	CounterShares   PostCounter = "shares_count"
)
