// Package plot renders point sets and fitted circles to PNG images for
// quick visual inspection of a fit.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/cwbudde/arcfit/internal/fit"
	"github.com/cwbudde/arcfit/internal/geom"
)

// Options controls the rendered canvas.
type Options struct {
	Width  int
	Height int
	// Margin is the fraction of the viewport left blank around the data.
	Margin float64
}

// DefaultOptions returns a 640x640 canvas with a 10% margin.
func DefaultOptions() Options {
	return Options{Width: 640, Height: 640, Margin: 0.1}
}

var (
	colorPoint     = color.NRGBA{0, 0, 0, 255}
	colorFitted    = color.NRGBA{220, 40, 40, 255}
	colorReference = color.NRGBA{160, 160, 160, 255}
)

// Render draws the sample points, the fitted circle, and an optional
// reference circle on a white canvas. The viewport is scaled to enclose
// everything drawn.
func Render(ps *geom.PointSet, fitted *fit.Circle, reference *fit.Circle, opts Options) *image.NRGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions()
	}

	minP, maxP := ps.Bounds()
	for _, c := range []*fit.Circle{fitted, reference} {
		if c == nil {
			continue
		}
		minP.X = math.Min(minP.X, c.Center.X-c.R)
		minP.Y = math.Min(minP.Y, c.Center.Y-c.R)
		maxP.X = math.Max(maxP.X, c.Center.X+c.R)
		maxP.Y = math.Max(maxP.Y, c.Center.Y+c.R)
	}

	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	proj := newProjection(minP, maxP, opts)

	if reference != nil {
		drawCircle(img, proj, *reference, colorReference)
	}
	if fitted != nil {
		drawCircle(img, proj, *fitted, colorFitted)
		drawDot(img, proj, fitted.Center, 2, colorFitted)
	}
	for i := 0; i < ps.Len(); i++ {
		drawDot(img, proj, ps.At(i), 1, colorPoint)
	}

	return img
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode plot: %w", err)
	}
	return nil
}

// projection maps world coordinates to pixels, preserving aspect ratio.
// Y is flipped so world up is image up.
type projection struct {
	scale      float64
	offX, offY float64
	height     int
}

func newProjection(min, max geom.Point, opts Options) projection {
	spanX := max.X - min.X
	spanY := max.Y - min.Y
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	usableW := float64(opts.Width) * (1 - 2*opts.Margin)
	usableH := float64(opts.Height) * (1 - 2*opts.Margin)
	scale := math.Min(usableW/spanX, usableH/spanY)

	// Center the data inside the canvas.
	offX := (float64(opts.Width) - spanX*scale) / 2
	offY := (float64(opts.Height) - spanY*scale) / 2

	return projection{
		scale:  scale,
		offX:   offX - min.X*scale,
		offY:   offY - min.Y*scale,
		height: opts.Height,
	}
}

func (pr projection) toPixel(p geom.Point) (int, int) {
	x := int(math.Round(p.X*pr.scale + pr.offX))
	y := pr.height - 1 - int(math.Round(p.Y*pr.scale+pr.offY))
	return x, y
}

func drawDot(img *image.NRGBA, pr projection, p geom.Point, radius int, col color.NRGBA) {
	cx, cy := pr.toPixel(p)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			setPixel(img, cx+dx, cy+dy, col)
		}
	}
}

func drawCircle(img *image.NRGBA, pr projection, c fit.Circle, col color.NRGBA) {
	// Sample enough angles that adjacent pixels connect at this scale.
	steps := int(math.Max(64, 2*math.Pi*c.R*pr.scale))
	for i := 0; i < steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		p := geom.Point{
			X: c.Center.X + c.R*math.Cos(angle),
			Y: c.Center.Y + c.R*math.Sin(angle),
		}
		x, y := pr.toPixel(p)
		setPixel(img, x, y, col)
	}
}

func setPixel(img *image.NRGBA, x, y int, col color.NRGBA) {
	if (image.Point{x, y}).In(img.Rect) {
		img.SetNRGBA(x, y, col)
	}
}
