package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const histSize = 256

// ScaleOffset applies output = clamp(input*contrast + brightness, 0, 255) to
// every color channel. Alpha is left untouched.
func ScaleOffset(img image.Image, contrast float64, brightness int) *image.NRGBA {
	offset := float64(brightness)
	scale := func(v uint8) uint8 {
		return clampUint8(math.RoundToEven(float64(v)*contrast + offset))
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
	})
}

// GaussianKernel returns the normalized 1-D Gaussian kernel of the given odd
// size. Sigma is derived from the size the same way OpenCV does when no sigma
// is supplied, and sizes up to 7 use the fixed binomial-like tables.
func GaussianKernel(size int) []float64 {
	switch size {
	case 1:
		return []float64{1}
	case 3:
		return []float64{0.25, 0.5, 0.25}
	case 5:
		return []float64{0.0625, 0.25, 0.375, 0.25, 0.0625}
	case 7:
		return []float64{0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125}
	}

	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	scale2X := -0.5 / (sigma * sigma)
	kernel := make([]float64, size)
	var sum float64
	for i := range kernel {
		x := float64(i) - float64(size-1)*0.5
		kernel[i] = math.Exp(scale2X * x * x)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur smooths every channel with a (2*radius+1)-square Gaussian
// kernel. A radius of zero returns img unchanged.
func GaussianBlur(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := img.Pix[img.PixOffset(b.Min.X, b.Min.Y):]
	out := convolveSeparable(pix, w, h, img.Stride, 4, GaussianKernel(2*radius+1))
	return &image.NRGBA{Pix: out, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// Luminance converts to a single channel using ITU-R BT.601 weights
func Luminance(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			r, g, bl := int(row[x*4]), int(row[x*4+1]), int(row[x*4+2])
			dst.Pix[y*dst.Stride+x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return dst
}

// Denoise applies the fixed 5x5 Gaussian pass that runs regardless of the
// user blur radius.
func Denoise(img *image.Gray) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := img.Pix[img.PixOffset(b.Min.X, b.Min.Y):]
	out := convolveSeparable(pix, w, h, img.Stride, 1, GaussianKernel(DenoiseKernelSize))
	return &image.Gray{Pix: out, Stride: w, Rect: image.Rect(0, 0, w, h)}
}

// CLAHE performs contrast limited adaptive histogram equalization. The image
// is split into tilesX*tilesY tiles (edge tiles borrow mirrored pixels when
// the size is not divisible), each tile gets a clipped equalization table,
// and every output pixel bilinearly blends the tables of the four nearest
// tile centers.
func CLAHE(img *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 || tilesX <= 0 || tilesY <= 0 {
		return dst
	}

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY
	tileArea := tileW * tileH

	limit := 0
	if clipLimit > 0 {
		limit = max(int(clipLimit*float64(tileArea)/histSize), 1)
	}
	lutScale := float64(histSize-1) / float64(tileArea)

	at := func(x, y int) uint8 {
		return img.Pix[img.PixOffset(b.Min.X+reflect101(x, w), b.Min.Y+reflect101(y, h))]
	}

	luts := make([][histSize]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var hist [histSize]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[at(x, y)]++
				}
			}
			clipHistogram(&hist, limit)

			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i, n := range hist {
				sum += n
				lut[i] = clampUint8(math.RoundToEven(float64(sum) * lutScale))
			}
		}
	}

	invTW := 1.0 / float64(tileW)
	invTH := 1.0 / float64(tileH)
	for y := 0; y < h; y++ {
		tyf := float64(y)*invTH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := min(ty1+1, tilesY-1)
		ty1 = max(ty1, 0)

		for x := 0; x < w; x++ {
			txf := float64(x)*invTW - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := min(tx1+1, tilesX-1)
			tx1 = max(tx1, 0)

			v := img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			dst.Pix[y*dst.Stride+x] = clampUint8(math.RoundToEven(top*(1-ya) + bottom*ya))
		}
	}
	return dst
}

// clipHistogram caps every bin at limit and spreads the excess evenly, with
// any remainder handed out at a fixed stride from the first bin.
func clipHistogram(hist *[histSize]int, limit int) {
	if limit <= 0 {
		return
	}
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := clipped / histSize
	residual := clipped - batch*histSize
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(histSize/residual, 1)
		for i := 0; i < histSize && residual > 0; i, residual = i+step, residual-1 {
			hist[i]++
		}
	}
}

// convolveSeparable runs a horizontal then vertical pass of kernel over an
// interleaved w*h buffer, mirroring at the borders. The result is packed with
// stride w*channels.
func convolveSeparable(pix []uint8, w, h, stride, channels int, kernel []float64) []uint8 {
	r := len(kernel) / 2
	tmp := make([]float64, w*h*channels)
	for y := 0; y < h; y++ {
		row := pix[y*stride:]
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				var sum float64
				for k, kv := range kernel {
					sx := reflect101(x+k-r, w)
					sum += kv * float64(row[sx*channels+c])
				}
				tmp[(y*w+x)*channels+c] = sum
			}
		}
	}

	out := make([]uint8, w*h*channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < channels; c++ {
				var sum float64
				for k, kv := range kernel {
					sy := reflect101(y+k-r, h)
					sum += kv * tmp[(sy*w+x)*channels+c]
				}
				out[(y*w+x)*channels+c] = clampUint8(math.RoundToEven(sum))
			}
		}
	}
	return out
}

// reflect101 mirrors i into [0, n) without repeating the edge pixel
// (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func clampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
