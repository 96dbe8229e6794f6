package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// AltTextGenerator は1画像分のalt属性テキスト生成を表します
// AnalyzerのGenerateAltTextがこれを満たします
type AltTextGenerator interface {
	GenerateAltText(ctx context.Context, image domain.SiteImage) (string, error)
}

// AltTextOptimizer はAI生成のalt属性でサイト画像を最適化するImageOptimizer実装です
// 画像の列挙と書き戻しはImageScannerに委譲し、テキスト生成のみを担います
type AltTextOptimizer struct {
	generator AltTextGenerator
	scanner   domain.ImageScanner
	logger    *slog.Logger
}

// NewAltTextOptimizer は新しいAltTextOptimizerを作成します
func NewAltTextOptimizer(generator AltTextGenerator, scanner domain.ImageScanner, logger *slog.Logger) *AltTextOptimizer {
	if logger == nil {
		logger = slog.Default()
	}

	return &AltTextOptimizer{
		generator: generator,
		scanner:   scanner,
		logger:    logger,
	}
}

var _ domain.ImageOptimizer = (*AltTextOptimizer)(nil)

// OptimizeImages は制約の範囲内で画像のalt属性を生成し、保存します
// 1画像の生成失敗は件数に記録するだけで残りの画像の処理を続けます
func (o *AltTextOptimizer) OptimizeImages(ctx context.Context, connectionID uuid.UUID, opts domain.OptimizeOptions) (*domain.OptimizeResult, error) {
	images, err := o.scanner.ScanImages(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan images for optimization: %w", err)
	}

	result := &domain.OptimizeResult{}
	var updated []domain.SiteImage
	for _, image := range images {
		if opts.OnlyMissingAlt && !image.MissingAlt() {
			continue
		}
		if opts.MaxImages > 0 && result.Successful+result.Failed >= opts.MaxImages {
			break
		}

		altText, err := o.generator.GenerateAltText(ctx, image)
		if err != nil {
			result.Failed++
			o.logger.Warn("Failed to generate alt text", "imageURL", image.URL, "error", err)
			continue
		}

		image.AltText = altText
		updated = append(updated, image)
		result.Successful++
	}

	if len(updated) > 0 {
		if err := o.scanner.StoreImages(ctx, connectionID, updated); err != nil {
			return nil, fmt.Errorf("failed to store optimized images: %w", err)
		}
	}

	o.logger.Info("Alt text optimization finished",
		"connectionID", connectionID,
		"successful", result.Successful,
		"failed", result.Failed,
	)

	return result, nil
}
