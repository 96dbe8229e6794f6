package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalyzer(t *testing.T) {
	t.Run("APIキー未設定はエラー", func(t *testing.T) {
		_, err := NewAnalyzer("", "gpt-4o-mini")
		assert.ErrorIs(t, err, ErrAPIKeyNotSet)
	})

	t.Run("モデル未指定はデフォルトにフォールバック", func(t *testing.T) {
		analyzer, err := NewAnalyzer("sk-test", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, analyzer.model)
		assert.Equal(t, DefaultTimeout, analyzer.timeout)
	})
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Severity
	}{
		{"critical", domain.SeverityCritical},
		{"CRITICAL", domain.SeverityCritical},
		{" high ", domain.SeverityHigh},
		{"medium", domain.SeverityMedium},
		{"low", domain.SeverityLow},
		{"urgent", domain.SeverityMedium},
		{"", domain.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeSeverity(tt.input))
		})
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	// Setup: 上限を超えるページ数と本文長
	pages := make([]domain.CrawledPage, maxPagesPerPrompt+3)
	for i := range pages {
		pages[i] = domain.CrawledPage{
			URL:     "https://example.com/page",
			Title:   "Page",
			Content: strings.Repeat("word ", maxContentPerPage),
		}
	}

	// Execute
	prompt := buildAnalysisPrompt("example.com", pages, domain.PlatformShopify)

	// Assert: ページ数は上限まで、本文は1ページあたりの上限で切り詰められる
	assert.Equal(t, maxPagesPerPrompt, strings.Count(prompt, "--- Page"))
	assert.Less(t, len(prompt), maxPagesPerPrompt*(maxContentPerPage+500))
	assert.Contains(t, prompt, "shopify")
	assert.Contains(t, prompt, "example.com")
	assert.Contains(t, prompt, "critical, high, medium, low")
}

func TestBuildAnalysisPrompt_EmptyContent(t *testing.T) {
	prompt := buildAnalysisPrompt("example.com", []domain.CrawledPage{
		{URL: "https://example.com", Title: "example.com"},
	}, domain.PlatformCustom)

	assert.Contains(t, prompt, "--- Page https://example.com")
	assert.Contains(t, prompt, "Meta description present: false")
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, isRateLimitError(&openai.Error{StatusCode: 429}))
	assert.False(t, isRateLimitError(&openai.Error{StatusCode: 500}))
	assert.False(t, isRateLimitError(errors.New("connection reset")))
	assert.False(t, isRateLimitError(nil))
}
