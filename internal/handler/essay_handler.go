package handler

import (
	"errors"
	"io"
	"strings"

	"essay-hub/internal/adapter/extract"
	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const uploadFileField = "file"

type EssayHandler struct {
	essayService service.EssayService
	validator    *validation.Validator
}

func NewEssayHandler(essayService service.EssayService, validator *validation.Validator) *EssayHandler {
	return &EssayHandler{essayService: essayService, validator: validator}
}

// UploadEssay stores and evaluates an essay.
// @Summary Upload essay
// @Description Accepts a .txt, .docx or .html file in "file", or raw text in "content".
// @Tags essays
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Essay file"
// @Param title formData string false "Title"
// @Param content formData string false "Essay text when no file is sent"
// @Success 201 {object} dto.EssayResponse
// @Failure 400 {object} middleware.ErrorResponse "Unsupported file or empty essay"
// @Failure 429 {object} middleware.ErrorResponse "Rate limited"
// @Router /essays [post]
func (h *EssayHandler) UploadEssay(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var form dto.UploadEssayForm
	if err := middleware.ParseBody(c, h.validator, &form); err != nil {
		return err
	}

	content := form.Content
	fileName := ""
	fh, err := c.FormFile(uploadFileField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return domain.NewInvalidInputError("Could not open the uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return domain.NewInvalidInputError("Could not read the uploaded file")
		}
		fileName = fh.Filename
		if content, err = extract.ExtractText(fileName, data); err != nil {
			return err
		}
	case errors.Is(err, fasthttp.ErrMissingFile), errors.Is(err, fasthttp.ErrNoMultipartForm):
	default:
		return domain.NewInvalidInputError("Invalid multipart form")
	}

	if strings.TrimSpace(content) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("content")}
	}

	essay, err := h.essayService.UploadEssay(c.UserContext(), userID, form.Title, fileName, content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewEssayResponse(essay))
}

// ListMyEssays lists the caller's essays, newest first.
// @Summary List my essays
// @Tags essays
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Max essays"
// @Success 200 {object} dto.EssayListResponse
// @Router /essays [get]
func (h *EssayHandler) ListMyEssays(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	essays, err := h.essayService.ListMyEssays(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEssayListResponse(essays))
}

// GetEssay returns one of the caller's essays with its evaluation.
// @Summary Get essay
// @Tags essays
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Essay ID"
// @Success 200 {object} dto.EssayResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /essays/{id} [get]
func (h *EssayHandler) GetEssay(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	essay, err := h.essayService.GetEssay(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEssayResponse(essay))
}

// DeleteEssay removes one of the caller's essays.
// @Summary Delete essay
// @Tags essays
// @Security ApiKeyAuth
// @Param id path string true "Essay ID"
// @Success 204
// @Router /essays/{id} [delete]
func (h *EssayHandler) DeleteEssay(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.essayService.DeleteEssay(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReevaluateEssay runs the evaluation again, bypassing the cache.
// @Summary Re-evaluate essay
// @Tags essays
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Essay ID"
// @Success 200 {object} dto.EssayResponse
// @Router /essays/{id}/evaluate [post]
func (h *EssayHandler) ReevaluateEssay(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	essay, err := h.essayService.ReevaluateEssay(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEssayResponse(essay))
}

// GetStatements returns the essay's atomic statements, generating them on first view.
// @Summary Get statements
// @Tags essays
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Essay ID"
// @Success 200 {object} dto.StatementsResponse
// @Router /essays/{id}/statements [get]
func (h *EssayHandler) GetStatements(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	result, err := h.essayService.GetStatements(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newStatementsResponse(result))
}

// RegenerateStatements rebuilds the statements, bypassing the cache.
// @Summary Regenerate statements
// @Tags essays
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Essay ID"
// @Success 200 {object} dto.StatementsResponse
// @Router /essays/{id}/statements/regenerate [post]
func (h *EssayHandler) RegenerateStatements(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	result, err := h.essayService.RegenerateStatements(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newStatementsResponse(result))
}

func newStatementsResponse(r *service.StatementsResult) dto.StatementsResponse {
	statements := r.Statements
	if statements == nil {
		statements = []domain.Statement{}
	}
	return dto.StatementsResponse{
		EssayID:     r.EssayID,
		Statements:  statements,
		Summary:     r.Summary,
		GeneratedAt: r.GeneratedAt,
	}
}
