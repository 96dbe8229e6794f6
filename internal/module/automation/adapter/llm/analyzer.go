// Package llm はOpenAIを使ったSEO分析・alt属性生成アダプターを提供します
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultModel はデフォルトで使用するOpenAIモデル
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 60 * time.Second

	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second

	// maxPagesPerPrompt は1回の分析プロンプトに含める代表ページ数
	maxPagesPerPrompt = 5

	// maxContentPerPage は1ページあたりプロンプトに含める本文の上限文字数
	maxContentPerPage = 2000
)

var (
	// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
	ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

	// ErrMaxRetriesExceeded は最大リトライ回数を超過した場合のエラー
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Analyzer はOpenAI APIを使用したSEO分析クライアントです
type Analyzer struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewAnalyzer は新しいAnalyzerを作成します
func NewAnalyzer(apiKey, model string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if model == "" {
		model = DefaultModel
	}

	return &Analyzer{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: DefaultTimeout,
	}, nil
}

var _ domain.SEOAnalyzer = (*Analyzer)(nil)

// analysisResponse はモデルが返すJSONの形です
type analysisResponse struct {
	Issues []struct {
		Type           string `json:"type"`
		Title          string `json:"title"`
		Severity       string `json:"severity"`
		PageURL        string `json:"pageUrl"`
		Description    string `json:"description"`
		Recommendation string `json:"recommendation"`
		FixCode        string `json:"fixCode"`
	} `json:"issues"`
}

// AnalyzeForSEO は代表ページの内容をモデルに渡し、検出された問題を返します
func (a *Analyzer) AnalyzeForSEO(ctx context.Context, siteDomain string, pages []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content, err := a.completeJSON(ctx, buildAnalysisPrompt(siteDomain, pages, platform))
	if err != nil {
		return nil, err
	}

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	issues := make([]domain.DetectedIssue, 0, len(parsed.Issues))
	for _, issue := range parsed.Issues {
		issues = append(issues, domain.DetectedIssue{
			IssueType:      issue.Type,
			Title:          issue.Title,
			Severity:       normalizeSeverity(issue.Severity),
			PageURL:        issue.PageURL,
			Description:    issue.Description,
			Recommendation: issue.Recommendation,
			FixCode:        issue.FixCode,
		})
	}

	return issues, nil
}

// GenerateAltText は画像のalt属性テキストを生成します
func (a *Analyzer) GenerateAltText(ctx context.Context, image domain.SiteImage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Write a concise, descriptive alt text (max 120 characters) for the image at %s, which appears on the page %s. Respond with the alt text only.",
		image.URL, image.PageURL)

	content, err := a.complete(ctx, prompt, nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.Trim(strings.TrimSpace(content), `"`)), nil
}

// buildAnalysisPrompt は分析プロンプトを組み立てます
func buildAnalysisPrompt(siteDomain string, pages []domain.CrawledPage, platform domain.Platform) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an SEO auditor. Analyze the following pages of the %s site %s and report every SEO defect you find.\n", platform, siteDomain)
	sb.WriteString(`Respond as JSON: {"issues": [{"type", "title", "severity", "pageUrl", "description", "recommendation", "fixCode"}]}. `)
	sb.WriteString("Severity must be one of critical, high, medium, low.\n\n")

	for i, page := range pages {
		if i >= maxPagesPerPrompt {
			break
		}
		content := page.Content
		if len(content) > maxContentPerPage {
			content = content[:maxContentPerPage]
		}
		fmt.Fprintf(&sb, "--- Page %s\nTitle: %s\nMeta description present: %t\nWord count: %d\nContent: %s\n\n",
			page.URL, page.Title, page.HasMetaDescription, page.WordCount, content)
	}

	return sb.String()
}

// completeJSON はJSONレスポンス形式でチャット補完を実行します
func (a *Analyzer) completeJSON(ctx context.Context, prompt string) (string, error) {
	format := &openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{
			Type: "json_object",
		},
	}
	return a.complete(ctx, prompt, format)
}

// complete はレート制限時にExponential Backoffで再試行しつつ補完を実行します
func (a *Analyzer) complete(ctx context.Context, prompt string, format *openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BaseBackoff
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(a.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		}
		if format != nil {
			params.ResponseFormat = *format
		}

		completion, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("OpenAI API call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("no completion choices returned")
		}

		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}

// normalizeSeverity はモデルが返す深刻度表記を正規化します
// 不明な値は安全側に倒してmediumにします
func normalizeSeverity(s string) domain.Severity {
	switch domain.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case domain.SeverityCritical:
		return domain.SeverityCritical
	case domain.SeverityHigh:
		return domain.SeverityHigh
	case domain.SeverityLow:
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}
