// Package thumbs renders the six low resolution cube faces a viewer shows
// while full resolution panorama images load.
package thumbs

import (
	"fmt"
	"image"
	"image/color"

	"cogentcore.org/core/math32"
	"golang.org/x/image/draw"
)

// FaceSuffixes names the faces in right, left, up, down, front, back order
var FaceSuffixes = [6]string{"r", "l", "u", "d", "f", "b"}

// Faces renders six size x size faces from one equirectangular image, six
// cube faces or 24 tiles (four per face, row major)
func Faces(images []image.Image, size int) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA
	if size <= 0 {
		return faces, fmt.Errorf("invalid face size %d", size)
	}
	for i := range faces {
		faces[i] = image.NewRGBA(image.Rect(0, 0, size, size))
	}

	switch len(images) {
	case 1:
		for i, f := range faces {
			projectFace(f, images[0], i)
		}
	case 6:
		for i, f := range faces {
			draw.CatmullRom.Scale(f, f.Bounds(), images[i], images[i].Bounds(), draw.Src, nil)
		}
	case 24:
		half := size / 2
		for i, f := range faces {
			for t := range 4 {
				row, col := t/2, t%2
				x0, y0 := col*half, row*half
				x1, y1 := x0+half, y0+half
				if col == 1 {
					x1 = size
				}
				if row == 1 {
					y1 = size
				}
				src := images[i*4+t]
				draw.CatmullRom.Scale(f, image.Rect(x0, y0, x1, y1), src, src.Bounds(), draw.Src, nil)
			}
		}
	default:
		return faces, fmt.Errorf("expected 1, 6 or 24 images, got %d", len(images))
	}
	return faces, nil
}

// faceDirection maps face coordinates s, t in [-1, 1] (right, down) to a
// view direction. Faces are seen from inside with front looking along -Z.
func faceDirection(face int, s, t float32) math32.Vector3 {
	switch face {
	case 0: // right
		return math32.Vec3(1, -t, s)
	case 1: // left
		return math32.Vec3(-1, -t, -s)
	case 2: // up, bottom edge meets front
		return math32.Vec3(s, 1, -t)
	case 3: // down, top edge meets front
		return math32.Vec3(s, -1, t)
	case 4: // front
		return math32.Vec3(s, -t, -1)
	default: // back
		return math32.Vec3(-s, -t, 1)
	}
}

// projectFace samples an equirectangular image for one cube face. The
// longitude runs from +X towards +Z like the sphere mesh of the viewer.
func projectFace(dst *image.RGBA, src image.Image, face int) {
	size := dst.Bounds().Dx()
	b := src.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	for y := range size {
		for x := range size {
			s := 2*(float32(x)+0.5)/float32(size) - 1
			t := 2*(float32(y)+0.5)/float32(size) - 1
			d := faceDirection(face, s, t).Normal()
			lon := math32.Atan2(d.Z, d.X)
			if lon < 0 {
				lon += 2 * math32.Pi
			}
			lat := math32.Acos(math32.Clamp(d.Y, -1, 1))
			u := lon / (2 * math32.Pi) * w
			v := lat / math32.Pi * h
			dst.Set(x, y, sample(src, b, u, v))
		}
	}
}

func sample(src image.Image, b image.Rectangle, u, v float32) color.Color {
	x := min(int(u), b.Dx()-1)
	y := min(int(v), b.Dy()-1)
	return src.At(b.Min.X+max(x, 0), b.Min.Y+max(y, 0))
}
