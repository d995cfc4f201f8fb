// image.go — lazy image values.
//
// Images are not rasterized when a script computes them; an image value holds
// a GeneratedImage, a generator the rendering host forces with the target
// size. Scripts that produce images a consumer never draws cost nothing.
package stencil

import "image"

// GeneratedImage is a deferred image: Generate rasterizes at the requested
// size. Implementations must be pure — repeated calls with the same size
// yield the same pixels — so hosts may cache results keyed by dependencies.
type GeneratedImage interface {
	Generate(width, height int) *image.RGBA
}

// BlankImage generates a fully transparent image. It is the ToImage default
// for nil.
type BlankImage struct{}

func (BlankImage) Generate(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// SolidImage generates a uniform fill; it is what a color converts to.
type SolidImage struct {
	Color Color
}

func (s SolidImage) Generate(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			setPixel(img, x, y, s.Color)
		}
	}
	return img
}

func setPixel(img *image.RGBA, x, y int, c Color) {
	i := img.PixOffset(x, y)
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}
