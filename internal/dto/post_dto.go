package dto

import (
	"time"

	"essay-hub/internal/domain"
)

type CreatePostRequest struct {
	EssayID    string `json:"essay_id" validate:"required,ulid"`
	Caption    string `json:"caption" validate:"max=1000"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public friends"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type PostResponse struct {
	ID            string            `json:"id"`
	AuthorID      string            `json:"author_id"`
	AuthorName    string            `json:"author_name"`
	EssayID       string            `json:"essay_id"`
	EssayTitle    string            `json:"essay_title"`
	EssayScore    int               `json:"essay_score"`
	Caption       string            `json:"caption,omitempty"`
	Visibility    domain.Visibility `json:"visibility"`
	LikesCount    int               `json:"likes_count"`
	CommentsCount int               `json:"comments_count"`
	SharesCount   int               `json:"shares_count"`
	LikedByViewer bool              `json:"liked_by_viewer"`
	CreatedAt     time.Time         `json:"created_at"`
	SharedAt      *time.Time        `json:"shared_at,omitempty"`
}

type PostListResponse struct {
	Posts  []PostResponse `json:"posts"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
}

func NewPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		AuthorName:    p.AuthorName,
		EssayID:       p.EssayID,
		EssayTitle:    p.EssayTitle,
		EssayScore:    p.EssayScore,
		Caption:       p.Caption,
		Visibility:    p.Visibility,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		SharesCount:   p.SharesCount,
		LikedByViewer: p.LikedByViewer,
		CreatedAt:     p.CreatedAt,
		SharedAt:      p.SharedAt,
	}
}

func NewPostList(posts []*domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p))
	}
	return out
}

func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func NewCommentList(comments []*domain.Comment) CommentListResponse {
	out := CommentListResponse{Comments: make([]CommentResponse, 0, len(comments))}
	for _, c := range comments {
		out.Comments = append(out.Comments, NewCommentResponse(c))
	}
	return out
}
