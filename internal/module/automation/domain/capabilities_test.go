package domain_test

import (
	"testing"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesFor(t *testing.T) {
	tests := []struct {
		name     string
		platform domain.Platform
		want     []domain.Capability
	}{
		{
			name:     "shopify",
			platform: domain.PlatformShopify,
			want: []domain.Capability{
				domain.CapabilityEditMeta,
				domain.CapabilityModifyContent,
				domain.CapabilityUploadImages,
				domain.CapabilityEditProducts,
			},
		},
		{
			name:     "wordpress",
			platform: domain.PlatformWordPress,
			want: []domain.Capability{
				domain.CapabilityEditMeta,
				domain.CapabilityModifyContent,
				domain.CapabilityUploadImages,
				domain.CapabilityEditPosts,
			},
		},
		{
			name:     "custom",
			platform: domain.PlatformCustom,
			want:     []domain.Capability{domain.CapabilityReadOnly},
		},
		{
			name:     "unknown platform falls back to read-only",
			platform: domain.Platform("squarespace"),
			want:     []domain.Capability{domain.CapabilityReadOnly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CapabilitiesFor(tt.platform))
		})
	}
}

func TestCapabilitiesFor_ReturnsCopy(t *testing.T) {
	// Setup
	caps := domain.CapabilitiesFor(domain.PlatformShopify)

	// Execute: 呼び出し側での変更が対応表を汚染しないこと
	caps[0] = domain.Capability("mutated")

	// Assert
	assert.Equal(t, domain.CapabilityEditMeta, domain.CapabilitiesFor(domain.PlatformShopify)[0])
}
