package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/repository/models"
	"essay-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	postColumns = `p.id, p.author_id, p.author_name, p.essay_id, p.essay_title, p.essay_score, p.caption,
	p.visibility, p.likes_count, p.comments_count, p.shares_count, p.created_at, p.shared_at`
	commentColumns = `id, post_id, user_id, user_name, body, created_at`

	defaultPostLimit = 20
)

// binder hands out Oracle positional placeholders in argument order.
type binder struct {
	args []interface{}
}

func (b *binder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return ":" + strconv.Itoa(len(b.args))
}

// PostDatabaseAdapter implements domain.PostRepository using sqlx.DB
type PostDatabaseAdapter struct {
	db *sqlx.DB
}

// NewPostDatabaseAdapter creates a new instance of PostDatabaseAdapter
func NewPostDatabaseAdapter(db *sqlx.DB) domain.PostRepository {
	return &PostDatabaseAdapter{db: db}
}

func toDomainPost(m *models.Post) *domain.Post {
	if m == nil {
		return nil
	}
	p := &domain.Post{
		ID:            m.ID,
		AuthorID:      m.AuthorID,
		AuthorName:    m.AuthorName.String,
		EssayID:       m.EssayID,
		EssayTitle:    m.EssayTitle,
		EssayScore:    m.EssayScore,
		Caption:       m.Caption.String,
		Visibility:    domain.Visibility(m.Visibility),
		LikesCount:    m.LikesCount,
		CommentsCount: m.CommentsCount,
		SharesCount:   m.SharesCount,
		LikedByViewer: m.LikedByViewer > 0,
		CreatedAt:     m.CreatedAt,
		SharedAt:      util.NullTimeToPtr(m.SharedAt),
	}
	return p
}

func toDomainComment(m *models.PostComment) *domain.Comment {
	if m == nil {
		return nil
	}
	return &domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		UserName:  m.UserName.String,
		Text:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// selectPosts builds the visibility-filtered SELECT. A viewer sees their own
// posts, public posts, and friends-only posts of users they share an edge with.
// An anonymous viewer sees public posts only.
func selectPosts(b *binder, viewerID string) string {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + postColumns + `, `)
	if viewerID == "" {
		sb.WriteString(`0 liked_by_viewer FROM posts p WHERE p.visibility = 'public'`)
		return sb.String()
	}
	sb.WriteString(`(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ` + b.bind(viewerID) + `) liked_by_viewer
	FROM posts p
	WHERE (p.author_id = ` + b.bind(viewerID) + ` OR p.visibility = 'public' OR (p.visibility = 'friends' AND EXISTS (
	  SELECT 1 FROM friendships f
	  WHERE (f.user_low = p.author_id AND f.user_high = ` + b.bind(viewerID) + `)
	     OR (f.user_high = p.author_id AND f.user_low = ` + b.bind(viewerID) + `))))`)
	return sb.String()
}

func (a *PostDatabaseAdapter) CreatePost(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = util.NewULID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	query := `INSERT INTO posts (id, author_id, author_name, essay_id, essay_title, essay_score, caption, visibility,
	            likes_count, comments_count, shares_count, created_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, 0, 0, 0, :9)`
	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		post.ID,
		post.AuthorID,
		util.StringToNullString(post.AuthorName),
		post.EssayID,
		post.EssayTitle,
		post.EssayScore,
		util.StringToNullString(post.Caption),
		string(post.Visibility),
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetVisiblePost returns nil when the post does not exist or viewerID may not see it.
func (a *PostDatabaseAdapter) GetVisiblePost(ctx context.Context, postID, viewerID string) (*domain.Post, error) {
	b := &binder{}
	query := selectPosts(b, viewerID) + ` AND p.id = ` + b.bind(postID)

	var m models.Post
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, b.args...); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post %s: %w", postID, err)
	}
	return toDomainPost(&m), nil
}

// ListPosts applies the filter on top of the visibility rules, newest first.
func (a *PostDatabaseAdapter) ListPosts(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error) {
	b := &binder{}
	var sb strings.Builder
	sb.WriteString(selectPosts(b, filter.ViewerID))

	if filter.AuthorID != "" {
		sb.WriteString(` AND p.author_id = ` + b.bind(filter.AuthorID))
	}
	if filter.AuthorName != "" {
		sb.WriteString(` AND LOWER(p.author_name) LIKE ` + b.bind("%"+strings.ToLower(filter.AuthorName)+"%"))
	}
	if filter.TitleSearch != "" {
		sb.WriteString(` AND LOWER(p.essay_title) LIKE ` + b.bind("%"+strings.ToLower(filter.TitleSearch)+"%"))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPostLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString(` ORDER BY p.created_at DESC OFFSET ` + b.bind(offset) + ` ROWS FETCH NEXT ` + b.bind(limit) + ` ROWS ONLY`)

	var rows []models.Post
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, sb.String(), b.args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := make([]*domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, toDomainPost(&rows[i]))
	}
	return posts, nil
}

// DeletePost removes the post. Likes and comments cascade.
func (a *PostDatabaseAdapter) DeletePost(ctx context.Context, postID string) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, `DELETE FROM posts WHERE id = :1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", postID, err)
	}
	return requireAffected(result, domain.NewPostNotFoundError(postID))
}

// AddLike reports false when the (post, user) key already exists.
func (a *PostDatabaseAdapter) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	query := `INSERT INTO post_likes (post_id, user_id, created_at) VALUES (:1, :2, :3)`
	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, postID, userID, time.Now()); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to like post %s: %w", postID, err)
	}
	return true, nil
}

func (a *PostDatabaseAdapter) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = :1 AND user_id = :2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post %s: %w", postID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// IncrementCounter adds delta to one of the post counters, never going below zero.
func (a *PostDatabaseAdapter) IncrementCounter(ctx context.Context, postID string, counter domain.PostCounter, delta int) error {
	switch counter {
	case domain.CounterLikes, domain.CounterComments, domain.CounterShares:
	default:
		return fmt.Errorf("unknown post counter %q", counter)
	}
	column := string(counter)
	query := `UPDATE posts SET ` + column + ` = GREATEST(` + column + ` + :1, 0) WHERE id = :2`
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("failed to update %s of post %s: %w", column, postID, err)
	}
	return requireAffected(result, domain.NewPostNotFoundError(postID))
}

func (a *PostDatabaseAdapter) MarkShared(ctx context.Context, postID string, at time.Time) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, `UPDATE posts SET shared_at = :1 WHERE id = :2`, at, postID)
	if err != nil {
		return fmt.Errorf("failed to mark post %s shared: %w", postID, err)
	}
	return requireAffected(result, domain.NewPostNotFoundError(postID))
}

func (a *PostDatabaseAdapter) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = util.NewULID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `INSERT INTO post_comments (id, post_id, user_id, user_name, body, created_at) VALUES (:1, :2, :3, :4, :5, :6)`
	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.UserID, util.StringToNullString(comment.UserName), comment.Text, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment on post %s: %w", comment.PostID, err)
	}
	return nil
}

func (a *PostDatabaseAdapter) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	var m models.PostComment
	query := `SELECT ` + commentColumns + ` FROM post_comments WHERE id = :1`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, commentID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment %s: %w", commentID, err)
	}
	return toDomainComment(&m), nil
}

// ListComments returns a post's comments, oldest first.
func (a *PostDatabaseAdapter) ListComments(ctx context.Context, postID string, limit int) ([]*domain.Comment, error) {
	if limit <= 0 {
		limit = defaultPostLimit
	}
	query := `SELECT ` + commentColumns + ` FROM post_comments
	          WHERE post_id = :1
	          ORDER BY created_at ASC
	          FETCH FIRST :2 ROWS ONLY`

	var rows []models.PostComment
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, postID, limit); err != nil {
		return nil, fmt.Errorf("failed to list comments of post %s: %w", postID, err)
	}
	comments := make([]*domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, toDomainComment(&rows[i]))
	}
	return comments, nil
}

func (a *PostDatabaseAdapter) DeleteComment(ctx context.Context, commentID string) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, `DELETE FROM post_comments WHERE id = :1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
	}
	return requireAffected(result, domain.NewError(domain.CodeCommentNotFound, "Comment not found", nil))
}
