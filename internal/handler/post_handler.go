package handler

import (
	"context"

	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	postService service.PostService
	validator   *validation.Validator
}

func NewPostHandler(postService service.PostService, validator *validation.Validator) *PostHandler {
	return &PostHandler{postService: postService, validator: validator}
}

// Feed godoc
// @Summary Post feed
// @Description Public posts plus friends-only posts from the caller's friends, newest share first.
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PostListResponse
// @Router /posts [get]
func (h *PostHandler) Feed(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page := parsePagination(c)
	posts, err := h.postService.Feed(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.PostListResponse{Posts: dto.NewPostList(posts), Limit: page.Limit, Offset: page.Offset})
}

// ListUserPosts godoc
// @Summary Posts by a user
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Author ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PostListResponse
// @Router /users/{id}/posts [get]
func (h *PostHandler) ListUserPosts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page := parsePagination(c)
	posts, err := h.postService.ListUserPosts(c.UserContext(), userID, c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.PostListResponse{Posts: dto.NewPostList(posts), Limit: page.Limit, Offset: page.Offset})
}

// CreatePost godoc
// @Summary Share an evaluated essay
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} middleware.ErrorResponse "Essay not evaluated or invalid input"
// @Failure 404 {object} middleware.ErrorResponse "Essay not found"
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreatePostRequest
	if err := middleware.ParseBody(c, h.validator, &req); err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.UserContext(), userID, req.EssayID, req.Caption, domain.Visibility(req.Visibility))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPostResponse(post))
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Failure 404 {object} middleware.ErrorResponse "Post not found or not visible"
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	return h.postAction(c, h.postService.GetPost)
}

// DeletePost godoc
// @Summary Delete own post
// @Tags posts
// @Security ApiKeyAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse "Not the author"
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.postService.DeletePost(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost godoc
// @Summary Like a post
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Router /posts/{id}/like [post]
func (h *PostHandler) LikePost(c *fiber.Ctx) error {
	return h.postAction(c, h.postService.Like)
}

// UnlikePost godoc
// @Summary Remove a like
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Router /posts/{id}/like [delete]
func (h *PostHandler) UnlikePost(c *fiber.Ctx) error {
	return h.postAction(c, h.postService.Unlike)
}

// SharePost godoc
// @Summary Share a post
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.PostResponse
// @Router /posts/{id}/share [post]
func (h *PostHandler) SharePost(c *fiber.Ctx) error {
	return h.postAction(c, h.postService.Share)
}

func (h *PostHandler) postAction(c *fiber.Ctx, op func(ctx context.Context, userID, postID string) (*domain.Post, error)) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	post, err := op(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPostResponse(post))
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param body body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.CommentResponse
// @Router /posts/{id}/comments [post]
func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := middleware.ParseBody(c, h.validator, &req); err != nil {
		return err
	}

	comment, err := h.postService.AddComment(c.UserContext(), userID, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

// ListComments godoc
// @Summary List comments
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Post ID"
// @Param limit query int false "Max comments"
// @Success 200 {object} dto.CommentListResponse
// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	comments, err := h.postService.ListComments(c.UserContext(), userID, c.Params("id"), parsePagination(c).Limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(comments))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description The comment author or the post author may delete a comment.
// @Tags posts
// @Security ApiKeyAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 204
// @Router /posts/{id}/comments/{commentId} [delete]
func (h *PostHandler) DeleteComment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.postService.DeleteComment(c.UserContext(), userID, c.Params("id"), c.Params("commentId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
