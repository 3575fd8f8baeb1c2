package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"essay-hub/internal/domain"
	"essay-hub/internal/logger"

	"go.uber.org/zap"
)

const (
	maxCaptionLength = 1000
	maxCommentLength = 1000
	commentPreview   = 100
)

// PostService covers posts and their likes, comments and shares. Every
// operation on an existing post first checks the caller can see it.
type PostService interface {
	CreatePost(ctx context.Context, authorID, essayID, caption string, visibility domain.Visibility) (*domain.Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error)
	Feed(ctx context.Context, viewerID string, limit, offset int) ([]*domain.Post, error)
	ListUserPosts(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*domain.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error

	Like(ctx context.Context, userID, postID string) (*domain.Post, error)
	Unlike(ctx context.Context, userID, postID string) (*domain.Post, error)
	Share(ctx context.Context, userID, postID string) (*domain.Post, error)

	AddComment(ctx context.Context, userID, postID, text string) (*domain.Comment, error)
	ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, userID, postID, commentID string) error
}

type postServiceImpl struct {
	postRepo  domain.PostRepository
	essayRepo domain.EssayRepository
	userRepo  domain.UserRepository
	txManager domain.TransactionManager
	notifier  domain.Notifier
}

func NewPostService(
	postRepo domain.PostRepository,
	essayRepo domain.EssayRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	notifier domain.Notifier,
) PostService {
	return &postServiceImpl{
		postRepo:  postRepo,
		essayRepo: essayRepo,
		userRepo:  userRepo,
		txManager: txManager,
		notifier:  notifier,
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, authorID, essayID, caption string, visibility domain.Visibility) (*domain.Post, error) {
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("visibility", visibility)}
	}
	caption = strings.TrimSpace(caption)
	if utf8.RuneCountInString(caption) > maxCaptionLength {
		return nil, domain.ValidationErrors{domain.NewOutOfRangeError("caption", utf8.RuneCountInString(caption), 0, maxCaptionLength)}
	}

	essay, err := s.essayRepo.GetEssayByID(ctx, essayID)
	if err != nil {
		return nil, repoError("Failed to load essay", err)
	}
	if essay == nil || essay.UserID != authorID {
		return nil, domain.NewEssayNotFoundError(essayID)
	}
	if !essay.IsEvaluated() {
		return nil, domain.NewError(domain.CodeEssayNotEvaluated, "Essay must be evaluated before it can be shared", nil)
	}

	author, err := s.userRepo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load author", err)
	}
	if author == nil {
		return nil, domain.NewUserNotFoundError(authorID)
	}

	post := &domain.Post{
		AuthorID:   authorID,
		AuthorName: author.Name,
		EssayID:    essay.ID,
		EssayTitle: essay.Title,
		EssayScore: essay.Evaluation.Score,
		Caption:    caption,
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, repoError("Failed to create post", err)
	}
	logger.Get().Info("Post created", zap.String("postID", post.ID), zap.String("essayID", essayID), zap.String("visibility", string(visibility)))
	return post, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error) {
	return s.visiblePost(ctx, postID, viewerID)
}

func (s *postServiceImpl) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*domain.Post, error) {
	posts, err := s.postRepo.ListPosts(ctx, domain.PostFilter{
		ViewerID: viewerID,
		Limit:    pageLimit(limit),
		Offset:   offset,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to load feed", err)
	}
	return posts, nil
}

func (s *postServiceImpl) ListUserPosts(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*domain.Post, error) {
	posts, err := s.postRepo.ListPosts(ctx, domain.PostFilter{
		ViewerID: viewerID,
		AuthorID: authorID,
		Limit:    pageLimit(limit),
		Offset:   offset,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list posts", err)
	}
	return posts, nil
}

func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return domain.NewForbiddenError("Only the author can delete this post")
	}
	if err := s.postRepo.DeletePost(ctx, postID); err != nil {
		return repoError("Failed to delete post", err)
	}
	logger.Get().Info("Post deleted", zap.String("postID", postID), zap.String("userID", userID))
	return nil
}

// Like is idempotent. The counter only moves when the like row is new.
func (s *postServiceImpl) Like(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	var added bool
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		added, err = s.postRepo.AddLike(txCtx, postID, userID)
		if err != nil {
			return domain.NewInternalError("Failed to like post", err)
		}
		if !added {
			return nil
		}
		return repoError("Failed to update like count", s.postRepo.IncrementCounter(txCtx, postID, domain.CounterLikes, 1))
	})
	if err != nil {
		return nil, err
	}

	post.LikedByViewer = true
	if added {
		post.LikesCount++
		if post.AuthorID != userID {
			s.notifier.Notify(ctx, post.AuthorID, domain.NotificationLike, map[string]interface{}{
				"post_id": postID,
				"user_id": userID,
			})
		}
	}
	return post, nil
}

func (s *postServiceImpl) Unlike(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	var removed bool
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		removed, err = s.postRepo.RemoveLike(txCtx, postID, userID)
		if err != nil {
			return domain.NewInternalError("Failed to unlike post", err)
		}
		if !removed {
			return nil
		}
		return repoError("Failed to update like count", s.postRepo.IncrementCounter(txCtx, postID, domain.CounterLikes, -1))
	})
	if err != nil {
		return nil, err
	}

	post.LikedByViewer = false
	if removed && post.LikesCount > 0 {
		post.LikesCount--
	}
	return post, nil
}

func (s *postServiceImpl) Share(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postRepo.IncrementCounter(txCtx, postID, domain.CounterShares, 1); err != nil {
			return repoError("Failed to update share count", err)
		}
		return repoError("Failed to mark post shared", s.postRepo.MarkShared(txCtx, postID, now))
	})
	if err != nil {
		return nil, err
	}

	post.SharesCount++
	post.SharedAt = &now
	if post.AuthorID != userID {
		s.notifier.Notify(ctx, post.AuthorID, domain.NotificationShare, map[string]interface{}{
			"post_id": postID,
			"user_id": userID,
		})
	}
	return post, nil
}

func (s *postServiceImpl) AddComment(ctx context.Context, userID, postID, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("text")}
	}
	if n := utf8.RuneCountInString(text); n > maxCommentLength {
		return nil, domain.ValidationErrors{domain.NewOutOfRangeError("text", n, 1, maxCommentLength)}
	}

	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}

	comment := &domain.Comment{
		PostID:    postID,
		UserID:    userID,
		UserName:  user.Name,
		Text:      text,
		CreatedAt: time.Now(),
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postRepo.CreateComment(txCtx, comment); err != nil {
			return domain.NewInternalError("Failed to create comment", err)
		}
		return repoError("Failed to update comment count", s.postRepo.IncrementCounter(txCtx, postID, domain.CounterComments, 1))
	})
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		s.notifier.Notify(ctx, post.AuthorID, domain.NotificationComment, map[string]interface{}{
			"post_id":    postID,
			"comment_id": comment.ID,
			"user_id":    userID,
			"user_name":  user.Name,
			"preview":    preview(text, commentPreview),
		})
	}
	return comment, nil
}

func (s *postServiceImpl) ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.Comment, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	comments, err := s.postRepo.ListComments(ctx, postID, pageLimit(limit))
	if err != nil {
		return nil, domain.NewInternalError("Failed to list comments", err)
	}
	return comments, nil
}

func (s *postServiceImpl) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	if _, err := s.visiblePost(ctx, postID, userID); err != nil {
		return err
	}
	comment, err := s.postRepo.GetComment(ctx, commentID)
	if err != nil {
		return domain.NewInternalError("Failed to load comment", err)
	}
	if comment == nil || comment.PostID != postID {
		return domain.NewError(domain.CodeCommentNotFound, "Comment not found", nil)
	}
	if comment.UserID != userID {
		return domain.NewForbiddenError("Only the author of a comment can delete it")
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.postRepo.DeleteComment(txCtx, commentID); err != nil {
			return repoError("Failed to delete comment", err)
		}
		return repoError("Failed to update comment count", s.postRepo.IncrementCounter(txCtx, postID, domain.CounterComments, -1))
	})
}

// visiblePost answers POST_NOT_FOUND for posts hidden from viewerID.
func (s *postServiceImpl) visiblePost(ctx context.Context, postID, viewerID string) (*domain.Post, error) {
	post, err := s.postRepo.GetVisiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load post", err)
	}
	if post == nil {
		return nil, domain.NewPostNotFoundError(postID)
	}
	return post, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
