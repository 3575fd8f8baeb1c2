package models

import (
	"database/sql"
	"time"
)

// FriendRequest represents a row of the friend_requests table.
type FriendRequest struct {
	ID         string       `db:"ID"`
	SenderID   string       `db:"SENDER_ID"`
	ReceiverID string       `db:"RECEIVER_ID"`
	PairKey    string       `db:"PAIR_KEY"` // "low:high" of the two user ids
	Status     string       `db:"STATUS"`
	CreatedAt  time.Time    `db:"CREATED_AT"`
	ResolvedAt sql.NullTime `db:"RESOLVED_AT"`
}

// FriendRequestWithUser joins the counterpart's profile onto a request row.
type FriendRequestWithUser struct {
	FriendRequest
	OtherName    sql.NullString `db:"OTHER_NAME"`
	OtherEmail   sql.NullString `db:"OTHER_EMAIL"`
	OtherPicture sql.NullString `db:"OTHER_PICTURE"`
}

// Friendship is the single symmetric edge between two users.
type Friendship struct {
	UserLow   string    `db:"USER_LOW"`
	UserHigh  string    `db:"USER_HIGH"`
	CreatedAt time.Time `db:"CREATED_AT"`
}

// Post represents a row of the posts table. LikedByViewer is computed per query.
type Post struct {
	ID            string         `db:"ID"`
	AuthorID      string         `db:"AUTHOR_ID"`
	AuthorName    sql.NullString `db:"AUTHOR_NAME"`
	EssayID       string         `db:"ESSAY_ID"`
	EssayTitle    string         `db:"ESSAY_TITLE"`
	EssayScore    int            `db:"ESSAY_SCORE"`
	Caption       sql.NullString `db:"CAPTION"`
	Visibility    string         `db:"VISIBILITY"`
	LikesCount    int            `db:"LIKES_COUNT"`
	CommentsCount int            `db:"COMMENTS_COUNT"`
	SharesCount   int            `db:"SHARES_COUNT"`
	LikedByViewer int            `db:"LIKED_BY_VIEWER"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	SharedAt      sql.NullTime   `db:"SHARED_AT"`
}

type PostComment struct {
	ID        string         `db:"ID"`
	PostID    string         `db:"POST_ID"`
	UserID    string         `db:"USER_ID"`
	UserName  sql.NullString `db:"USER_NAME"`
	Body      string         `db:"BODY"`
	CreatedAt time.Time      `db:"CREATED_AT"`
}
