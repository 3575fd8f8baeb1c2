package handler

import (
	"strconv"

	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// currentUserID returns the authenticated user or an UNAUTHORIZED error for
// routes mounted behind middleware.Protected.
func currentUserID(c *fiber.Ctx) (string, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return "", domain.NewUnauthorizedError("User ID not found in context")
	}
	return userID, nil
}

func parsePagination(c *fiber.Ctx) dto.Pagination {
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return dto.Pagination{Limit: limit, Offset: offset}
}
