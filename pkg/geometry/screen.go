package geometry

import "cogentcore.org/core/math32"

// ScreenToNDC converts a pixel position (origin top-left, y down) to
// normalized device coordinates (origin center, y up, range [-1, 1])
func ScreenToNDC(x, y, width, height float32) math32.Vector2 {
	return math32.Vec2(x/width*2-1, -(y/height)*2+1)
}

// NDCToScreen is the inverse of ScreenToNDC
func NDCToScreen(ndc math32.Vector2, width, height float32) math32.Vector2 {
	return math32.Vec2((ndc.X+1)/2*width, (1-ndc.Y)/2*height)
}
