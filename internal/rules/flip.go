package rules

// FlipResult reports what a bracket scan changed.
type FlipResult struct {
	FlippedAny  bool       `json:"flippedAny"`
	KingFlipped bool       `json:"kingFlipped"`
	Flipped     []Position `json:"flipped"`
}

// ResolveFlips scans the eight lines leaving origin. Every unbroken run of opposing
// pieces that ends on a piece of the mover's color changes to the mover's color.
// A run that reaches an empty cell or the edge of the board is left alone.
func ResolveFlips(b *Board, origin Position, assets AssetResolver) FlipResult {
	var res FlipResult
	mover := b.At(origin)
	if mover.IsEmpty() {
		return res
	}

	for _, d := range kingDirs {
		var run []Position
		for p := origin.add(d); p.InBounds(); p = p.add(d) {
			pc := b.At(p)
			if pc.IsEmpty() {
				run = nil
				break
			}
			if pc.Color != mover.Color {
				run = append(run, p)
				continue
			}
			for _, fp := range run {
				flipped := b.At(fp)
				if flipped.Kind == King {
					res.KingFlipped = true
				}
				flipped.Color = mover.Color
				flipped.Asset = resolveAsset(assets, mover.Color, flipped.Kind)
				b.place(fp, flipped)
				res.Flipped = append(res.Flipped, fp)
			}
			break
		}
	}
	res.FlippedAny = len(res.Flipped) > 0
	return res
}
