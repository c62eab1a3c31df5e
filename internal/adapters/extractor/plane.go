package extractor

import (
	"image"
	"math"
	"math/rand/v2"
)

// plane is a grayscale image with intensities in [0, 1].
type plane struct {
	w, h int
	pix  []float64
}

func luminance(img *image.NRGBA) *plane {
	b := img.Bounds()
	p := &plane{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}
	for y := range p.h {
		row := img.Pix[y*img.Stride:]
		for x := range p.w {
			p.pix[y*p.w+x] = float64(row[x*4]) / 255
		}
	}
	return p
}

// at returns the intensity at (x, y), clamping coordinates to the image.
func (p *plane) at(x, y int) float64 {
	x = min(max(x, 0), p.w-1)
	y = min(max(y, 0), p.h-1)
	return p.pix[y*p.w+x]
}

// harris returns the Harris corner response of every pixel, using Sobel
// gradients summed over a 3x3 window.
func (p *plane) harris() []float64 {
	n := p.w * p.h
	ixx := make([]float64, n)
	iyy := make([]float64, n)
	ixy := make([]float64, n)

	for y := range p.h {
		for x := range p.w {
			gx := (p.at(x+1, y-1) + 2*p.at(x+1, y) + p.at(x+1, y+1)) -
				(p.at(x-1, y-1) + 2*p.at(x-1, y) + p.at(x-1, y+1))
			gy := (p.at(x-1, y+1) + 2*p.at(x, y+1) + p.at(x+1, y+1)) -
				(p.at(x-1, y-1) + 2*p.at(x, y-1) + p.at(x+1, y-1))
			i := y*p.w + x
			ixx[i] = gx * gx
			iyy[i] = gy * gy
			ixy[i] = gx * gy
		}
	}

	resp := make([]float64, n)
	for y := 1; y < p.h-1; y++ {
		for x := 1; x < p.w-1; x++ {
			var sxx, syy, sxy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					i := (y+dy)*p.w + x + dx
					sxx += ixx[i]
					syy += iyy[i]
					sxy += ixy[i]
				}
			}
			trace := sxx + syy
			resp[y*p.w+x] = sxx*syy - sxy*sxy - harrisK*trace*trace
		}
	}
	return resp
}

// orientation returns the angle from (x, y) to the intensity centroid of
// the surrounding disc.
func (p *plane) orientation(x, y int) float64 {
	var m01, m10 float64
	for dy := -centroidRadius; dy <= centroidRadius; dy++ {
		for dx := -centroidRadius; dx <= centroidRadius; dx++ {
			if dx*dx+dy*dy > centroidRadius*centroidRadius {
				continue
			}
			v := p.at(x+dx, y+dy)
			m10 += float64(dx) * v
			m01 += float64(dy) * v
		}
	}
	return math.Atan2(m01, m10)
}

// describe evaluates the binary tests of the sampling pattern rotated by theta.
func (p *plane) describe(x, y int, theta float64) [32]byte {
	var desc [32]byte
	sin, cos := math.Sincos(theta)
	for i, t := range pattern {
		x1 := x + int(math.Round(cos*t.x1-sin*t.y1))
		y1 := y + int(math.Round(sin*t.x1+cos*t.y1))
		x2 := x + int(math.Round(cos*t.x2-sin*t.y2))
		y2 := y + int(math.Round(sin*t.x2+cos*t.y2))
		if p.at(x1, y1) < p.at(x2, y2) {
			desc[i/8] |= 1 << (i % 8)
		}
	}
	return desc
}

type test struct {
	x1, y1, x2, y2 float64
}

// pattern holds the 256 point pairs of the descriptor. It is drawn from a
// fixed seed; changing the seed changes every descriptor.
var pattern = newPattern()

func newPattern() [256]test {
	rng := rand.New(rand.NewPCG(0x6e667467656e, 0x62726965662d31)) //nolint:gosec // deterministic sampling pattern
	// Tests stay inside the inscribed circle so any rotation remains in the patch.
	limit := float64(patchRadius) / math.Sqrt2
	coord := func() float64 {
		return math.Round(max(-limit, min(limit, rng.NormFloat64()*limit/2)))
	}

	var tests [256]test
	for i := range tests {
		tests[i] = test{x1: coord(), y1: coord(), x2: coord(), y2: coord()}
	}
	return tests
}
