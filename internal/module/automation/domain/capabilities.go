package domain

// Capability はプラットフォーム上で実行可能な操作種別を表します
type Capability string

const (
	CapabilityEditMeta      Capability = "edit_meta"
	CapabilityModifyContent Capability = "modify_content"
	CapabilityUploadImages  Capability = "upload_images"
	CapabilityEditProducts  Capability = "edit_products"
	CapabilityEditPosts     Capability = "edit_posts"
	CapabilityReadOnly      Capability = "read_only_analysis"
)

// platformCapabilities はプラットフォーム種別から操作可能な機能への静的な対応表です
// 実行時の型判定ではなく閉じた列挙に対する参照で分岐します
var platformCapabilities = map[Platform][]Capability{
	PlatformShopify: {
		CapabilityEditMeta,
		CapabilityModifyContent,
		CapabilityUploadImages,
		CapabilityEditProducts,
	},
	PlatformWordPress: {
		CapabilityEditMeta,
		CapabilityModifyContent,
		CapabilityUploadImages,
		CapabilityEditPosts,
	},
	PlatformCustom: {
		CapabilityReadOnly,
	},
}

// CapabilitiesFor はプラットフォームの機能セットを返します
// 未知のプラットフォームは読み取り専用として扱います
func CapabilitiesFor(platform Platform) []Capability {
	caps, ok := platformCapabilities[platform]
	if !ok {
		return []Capability{CapabilityReadOnly}
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
