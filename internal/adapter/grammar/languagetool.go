// Package grammar checks essay text against a LanguageTool server.
package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/logger"

	"go.uber.org/zap"
)

const maxReplacements = 3

type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Message      string `json:"message"`
	Offset       int    `json:"offset"`
	Length       int    `json:"length"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
	Context struct {
		Text   string `json:"text"`
		Offset int    `json:"offset"`
		Length int    `json:"length"`
	} `json:"context"`
}

// LanguageToolChecker implements domain.GrammarChecker over the /v2/check API.
type LanguageToolChecker struct {
	cfg    config.GrammarConfig
	client *http.Client
}

func NewLanguageToolChecker(cfg config.GrammarConfig, client *http.Client) domain.GrammarChecker {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &LanguageToolChecker{cfg: cfg, client: client}
}

// Check returns nil without calling out when the checker is disabled.
func (c *LanguageToolChecker) Check(ctx context.Context, text, language string) (*domain.GrammarCheck, error) {
	if !c.cfg.Enabled || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = c.cfg.Language
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)

	endpoint := strings.TrimRight(c.cfg.URL, "/") + "/v2/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build languagetool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Get().Warn("LanguageTool request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Get().Warn("LanguageTool returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("languagetool status %d", resp.StatusCode)
	}

	var lt ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&lt); err != nil {
		return nil, fmt.Errorf("decode languagetool response: %w", err)
	}
	return toGrammarCheck(lt), nil
}

func toGrammarCheck(lt ltResponse) *domain.GrammarCheck {
	check := &domain.GrammarCheck{Total: len(lt.Matches), Matches: []domain.GrammarMatch{}}
	for i, m := range lt.Matches {
		if i == domain.MaxGrammarErrors {
			break
		}
		gm := domain.GrammarMatch{
			Message:      m.Message,
			Context:      m.Context.Text,
			Offset:       m.Offset,
			Length:       m.Length,
			Replacements: []string{},
		}
		for j, r := range m.Replacements {
			if j == maxReplacements {
				break
			}
			gm.Replacements = append(gm.Replacements, r.Value)
		}
		check.Matches = append(check.Matches, gm)
	}
	return check
}
