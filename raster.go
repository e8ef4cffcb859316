package silhouette

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Raster is a row-major RGBA pixel buffer with 4 bytes per pixel. Only the
// alpha channel drives contour detection.
type Raster struct {
	Width, Height int
	Pix           []uint8
}

// NewRaster allocates a fully transparent raster.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
	}
}

// Alpha returns the alpha value at (x, y), or 0 outside the raster.
func (r *Raster) Alpha(x, y int) uint8 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return 0
	}
	return r.Pix[(y*r.Width+x)*4+3]
}

// Set writes a non-premultiplied color at (x, y). Out-of-range writes are ignored.
func (r *Raster) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := (y*r.Width + x) * 4
	r.Pix[i] = n.R
	r.Pix[i+1] = n.G
	r.Pix[i+2] = n.B
	r.Pix[i+3] = n.A
}

// FillRect sets every pixel in [x0, x1) x [y0, y1) to c, clipped to the raster.
func (r *Raster) FillRect(x0, y0, x1, y1 int, c color.Color) {
	for y := max(y0, 0); y < min(y1, r.Height); y++ {
		for x := max(x0, 0); x < min(x1, r.Width); x++ {
			r.Set(x, y, c)
		}
	}
}

// NRGBA returns a copy of the raster as an image.
func (r *Raster) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// RasterFromImage converts img to a raster of the same size.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return rasterFromNRGBA(dst)
}

// RasterFromImageScaled resamples img to width x height with bilinear
// filtering. Contours are usually extracted at a fixed working size so the
// persisted points share one pixel space.
func RasterFromImageScaled(img image.Image, width, height int) *Raster {
	if width <= 0 || height <= 0 {
		return NewRaster(0, 0)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return rasterFromNRGBA(dst)
}

// RasterFromEbiten reads back the pixels of an ebiten image. Colors come back
// premultiplied; alpha is unaffected, which is all contour detection uses.
// Like any ReadPixels call it must run after the game loop has started.
func RasterFromEbiten(img *ebiten.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	img.ReadPixels(r.Pix)
	return r
}

func rasterFromNRGBA(img *image.NRGBA) *Raster {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	r := NewRaster(w, h)
	if img.Stride == 4*w {
		copy(r.Pix, img.Pix)
		return r
	}
	for y := 0; y < h; y++ {
		copy(r.Pix[y*4*w:(y+1)*4*w], img.Pix[y*img.Stride:y*img.Stride+4*w])
	}
	return r
}
