package game

// UnknownAsset is returned for colour/frame pairs outside the table.
const UnknownAsset = 0

// Item ids for each colour, frames 0..7 rising and 8 the pulsing open gate.
// The id just before frame 0 in each rising run makes the client play the
// whole animation by itself, so it is never used.
var frameAssets = [...][FrameCount]int{
	ColorBlue:   {0x1AF4, 0x1AF5, 0x1AF6, 0x1AF7, 0x1AF8, 0x1AF9, 0x1AFA, 0x1AFB, 0x0F6C},
	ColorRed:    {0x1AE6, 0x1AE7, 0x1AE8, 0x1AE9, 0x1AEA, 0x1AEB, 0x1AEC, 0x1AED, 0x0DDA},
	ColorBlack:  {0x1FCC, 0x1FCD, 0x1FCE, 0x1FCF, 0x1FD0, 0x1FD1, 0x1FD2, 0x1FD3, 0x1FD4},
	ColorSilver: {0x1FDF, 0x1FE0, 0x1FE1, 0x1FE2, 0x1FE3, 0x1FE4, 0x1FE5, 0x1FE6, 0x1FE7},
}

// FrameAsset returns the item id shown for frame index of a gate of colour c.
func FrameAsset(c Color, index int) int {
	if c < 0 || int(c) >= len(frameAssets) || index < 0 || index >= FrameCount {
		return UnknownAsset
	}
	return frameAssets[c][index]
}
