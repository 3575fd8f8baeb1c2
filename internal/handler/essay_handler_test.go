package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/handler"
	"essay-hub/internal/service"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, fields map[string]string, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/essays", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func setupEssayApp(mockEssay *MockEssayService) *fiber.App {
	h := handler.NewEssayHandler(mockEssay, validation.NewValidator())
	app := newTestApp()
	app.Use(asUser(testUserID))
	app.Post("/essays", h.UploadEssay)
	app.Get("/essays", h.ListMyEssays)
	app.Get("/essays/:id", h.GetEssay)
	app.Delete("/essays/:id", h.DeleteEssay)
	app.Post("/essays/:id/evaluate", h.ReevaluateEssay)
	app.Get("/essays/:id/statements", h.GetStatements)
	app.Post("/essays/:id/statements/regenerate", h.RegenerateStatements)
	return app
}

func evaluatedEssay(id, title string) *domain.Essay {
	return &domain.Essay{
		ID:         id,
		UserID:     testUserID,
		Title:      title,
		Status:     domain.EssayStatusCompleted,
		Evaluation: &domain.EssayEvaluation{Score: 88, Source: domain.SourceStructured},
	}
}

func TestEssayHandler_UploadEssay(t *testing.T) {
	t.Run("File upload", func(t *testing.T) {
		var gotTitle, gotFile, gotContent string
		mockEssay := &MockEssayService{
			UploadEssayFunc: func(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error) {
				assert.Equal(t, testUserID, userID)
				gotTitle, gotFile, gotContent = title, fileName, content
				return evaluatedEssay(testItemID, "Transit"), nil
			},
		}
		app := setupEssayApp(mockEssay)

		req := multipartUpload(t, map[string]string{"title": "Transit"}, "transit.txt", []byte("Cities should invest in public transit."))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		assert.Equal(t, "Transit", gotTitle)
		assert.Equal(t, "transit.txt", gotFile)
		assert.Equal(t, "Cities should invest in public transit.", gotContent)

		var body dto.EssayResponse
		decodeBody(t, resp, &body)
		require.NotNil(t, body.Evaluation)
		assert.Equal(t, 88, body.Evaluation.Score)
	})

	t.Run("Raw text", func(t *testing.T) {
		var gotFile, gotContent string
		mockEssay := &MockEssayService{
			UploadEssayFunc: func(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error) {
				gotFile, gotContent = fileName, content
				return evaluatedEssay(testItemID, title), nil
			},
		}
		app := setupEssayApp(mockEssay)

		resp, err := app.Test(jsonRequest("POST", "/essays", map[string]string{"title": "Notes", "content": "Short essay body here."}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Empty(t, gotFile)
		assert.Equal(t, "Short essay body here.", gotContent)
	})

	t.Run("Unsupported file type", func(t *testing.T) {
		app := setupEssayApp(&MockEssayService{})
		req := multipartUpload(t, nil, "essay.pdf", []byte("%PDF-1.4"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, string(domain.CodeUnsupportedFileType), errorCode(t, resp))
	})

	t.Run("No content", func(t *testing.T) {
		app := setupEssayApp(&MockEssayService{})
		req := multipartUpload(t, map[string]string{"title": "Empty", "content": "   "}, "", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, string(domain.CodeValidation), errorCode(t, resp))
	})
}

func TestEssayHandler_ListMyEssays(t *testing.T) {
	var gotLimit int
	mockEssay := &MockEssayService{
		ListMyEssaysFunc: func(ctx context.Context, userID string, limit int) ([]*domain.Essay, error) {
			gotLimit = limit
			return []*domain.Essay{evaluatedEssay(testItemID, "One")}, nil
		},
	}
	app := setupEssayApp(mockEssay)

	resp, err := app.Test(httptest.NewRequest("GET", "/essays?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, gotLimit)

	var body dto.EssayListResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Essays, 1)
	assert.Equal(t, "One", body.Essays[0].Title)
}

func TestEssayHandler_GetEssay(t *testing.T) {
	mockEssay := &MockEssayService{
		GetEssayFunc: func(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
			switch essayID {
			case testItemID:
				return evaluatedEssay(essayID, "Mine"), nil
			case otherUserID:
				return nil, domain.NewForbiddenError("You do not have access to this essay")
			}
			return nil, domain.NewEssayNotFoundError(essayID)
		},
	}
	app := setupEssayApp(mockEssay)

	tests := []struct {
		id           string
		expectedCode int
	}{
		{testItemID, fiber.StatusOK},
		{otherUserID, fiber.StatusForbidden},
		{"01HGZ8VNRYXS8QKNJV5GRWPWDT", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", "/essays/"+tt.id, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.expectedCode, resp.StatusCode, tt.id)
	}
}

func TestEssayHandler_DeleteAndReevaluate(t *testing.T) {
	deleted := ""
	mockEssay := &MockEssayService{
		DeleteEssayFunc: func(ctx context.Context, userID, essayID string) error {
			deleted = essayID
			return nil
		},
		ReevaluateEssayFunc: func(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
			return evaluatedEssay(essayID, "Again"), nil
		},
	}
	app := setupEssayApp(mockEssay)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/essays/"+testItemID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, testItemID, deleted)

	resp, err = app.Test(httptest.NewRequest("POST", "/essays/"+testItemID+"/evaluate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestEssayHandler_Statements(t *testing.T) {
	mockEssay := &MockEssayService{
		GetStatementsFunc: func(ctx context.Context, userID, essayID string) (*service.StatementsResult, error) {
			return &service.StatementsResult{EssayID: essayID}, nil
		},
		RegenerateStatementsFunc: func(ctx context.Context, userID, essayID string) (*service.StatementsResult, error) {
			return nil, domain.NewLLMServiceError(assert.AnError)
		},
	}
	app := setupEssayApp(mockEssay)

	resp, err := app.Test(httptest.NewRequest("GET", "/essays/"+testItemID+"/statements", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, []interface{}{}, body["statements"])

	resp, err = app.Test(httptest.NewRequest("POST", "/essays/"+testItemID+"/statements/regenerate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
