package handler

import (
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	searchService service.SearchService
}

func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
// @Summary Search posts and users
// @Description A "quoted" query searches by author name, anything else by essay title. Queries shorter than two characters return empty results.
// @Tags search
// @Produce json
// @Param q query string true "Query"
// @Success 200 {object} dto.SearchResponse
// @Router /search [get]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	result, err := h.searchService.Search(c.UserContext(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(dto.SearchResponse{
		Posts:      dto.NewPostList(result.Posts),
		Users:      dto.NewPublicUserList(result.Users),
		SearchType: result.SearchType,
	})
}
