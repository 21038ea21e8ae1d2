package rules

import "strings"

// AssetResolver maps a (color, kind) pair to a display handle owned by the renderer.
// An empty handle is allowed; the piece still takes part in the rules.
type AssetResolver interface {
	Asset(c Color, k Kind) string
}

// AssetFunc adapts a plain function to AssetResolver.
type AssetFunc func(c Color, k Kind) string

func (f AssetFunc) Asset(c Color, k Kind) string {
	return f(c, k)
}

// ImageAssets names pieces after the image set, e.g. base+"WHITE_KING.png".
func ImageAssets(base string) AssetFunc {
	return func(c Color, k Kind) string {
		return base + strings.ToUpper(string(c)) + "_" + strings.ToUpper(string(k)) + ".png"
	}
}

func resolveAsset(assets AssetResolver, c Color, k Kind) string {
	if assets == nil {
		return ""
	}
	return assets.Asset(c, k)
}
