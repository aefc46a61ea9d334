// Package render composes the frames shown on the display: the playback
// screen with its fire visualizer, the empty-library screen and the
// sleep screen.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
	"github.com/hammamikhairi/valplayer/internal/scroller"
	"github.com/hammamikhairi/valplayer/internal/visualizer"
)

// Crystal red palette.
var (
	ColorBackground = color.NRGBA{40, 0, 0, 255}
	ColorText       = color.NRGBA{255, 220, 220, 255}
	ColorGlow       = color.NRGBA{255, 40, 40, 255}
	ColorShadow     = color.NRGBA{20, 0, 0, 255}
	ColorCrystal    = color.NRGBA{255, 180, 180, 255}
	ColorGradient   = color.NRGBA{80, 0, 0, 255}
)

// Layout constants, in pixels.
const (
	Margin         = 20
	ScrollWidth    = 200
	ShadowOffset   = 2
	GradientHeight = 100
	GradientAlpha  = 160

	BarSpacing   = 4
	MaxBarHeight = 60
	BarBaseInset = 10
)

// View is everything the composer needs to draw one awake frame.
type View struct {
	Tracks  []domain.Track
	Index   int
	Playing bool
	Volume  float64
	Bars    []float64
}

// Option configures the composer.
type Option func(*Composer)

// WithSize sets the frame size.
func WithSize(w, h int) Option {
	return func(c *Composer) {
		c.width, c.height = w, h
	}
}

// WithSleepTitle sets the lines drawn on the sleep screen.
func WithSleepTitle(lines ...string) Option {
	return func(c *Composer) {
		c.sleepTitle = lines
	}
}

// WithMusicDir sets the directory named on the empty-library screen.
func WithMusicDir(dir string) Option {
	return func(c *Composer) {
		c.musicDir = dir
	}
}

// Composer draws frames. It owns the title scroller.
type Composer struct {
	assets Assets
	rng    *rand.Rand
	log    *logger.Logger
	scroll *scroller.Scroller

	width      int
	height     int
	sleepTitle []string
	musicDir   string

	sleepFrame *image.RGBA
}

// NewComposer creates a composer. rng drives the flame-tip flicker.
func NewComposer(assets Assets, rng *rand.Rand, log *logger.Logger, opts ...Option) *Composer {
	c := &Composer{
		assets:     assets,
		rng:        rng,
		log:        log,
		width:      240,
		height:     240,
		sleepTitle: []string{"THE", "VALERIES"},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scroll = scroller.New(scroller.WithMeasure(scroller.FaceMeasure(assets.Title)))
	return c
}

// ResetScroll restarts the title scroll. Call it when the track changes.
func (c *Composer) ResetScroll() { c.scroll.Reset() }

// Compose draws the awake screen for v.
func (c *Composer) Compose(v View) *image.RGBA {
	dc := gg.NewContext(c.width, c.height)
	dc.SetColor(ColorBackground)
	dc.Clear()
	c.drawGradient(dc)

	if len(v.Tracks) == 0 {
		c.drawEmpty(dc)
	} else {
		c.drawTrackInfo(dc, v)
	}

	img := dc.Image().(*image.RGBA)
	c.drawBars(img, v.Bars)
	return img
}

func (c *Composer) drawGradient(dc *gg.Context) {
	top := c.height - GradientHeight
	for y := top; y < c.height; y++ {
		a := uint8((y - top) * GradientAlpha / GradientHeight)
		dc.SetColor(color.NRGBA{ColorGradient.R, ColorGradient.G, ColorGradient.B, a})
		dc.DrawRectangle(0, float64(y), float64(c.width), 1)
		dc.Fill()
	}
}

func (c *Composer) drawEmpty(dc *gg.Context) {
	dc.SetFontFace(c.assets.Title)
	drawText(dc, "No music files found", Margin, 100, ColorText)
	dc.SetFontFace(c.assets.Info)
	drawText(dc, "in "+c.musicDir, Margin, 140, ColorText)
}

func (c *Composer) drawTrackInfo(dc *gg.Context, v View) {
	idx := v.Index
	if idx < 0 || idx >= len(v.Tracks) {
		idx = 0
	}

	dc.SetFontFace(c.assets.Info)
	header := fmt.Sprintf("Track %d/%d", idx+1, len(v.Tracks))
	drawShadowed(dc, header, Margin, 30, ColorGlow)

	c.drawTitle(dc, v.Tracks[idx].DisplayName, Margin, 60)

	dc.SetFontFace(c.assets.Info)
	if v.Playing {
		drawText(dc, "▶ Playing", Margin, 100, ColorGlow)
	} else {
		drawText(dc, "❚❚ Paused", Margin, 100, ColorText)
	}
	vol := fmt.Sprintf("Volume: %d%%", int(math.Round(v.Volume*100)))
	drawText(dc, vol, Margin, 130, ColorCrystal)
}

// drawTitle draws the scrolling title clipped to its viewport.
func (c *Composer) drawTitle(dc *gg.Context, title string, x, y float64) {
	dc.SetFontFace(c.assets.Title)
	offset, _ := c.scroll.Layout(title, ScrollWidth)

	_, h := dc.MeasureString(title)
	dc.Push()
	dc.DrawRectangle(x, y-ShadowOffset, ScrollWidth+ShadowOffset, h+2*ShadowOffset+descent(c.assets.Title))
	dc.Clip()
	drawShadowed(dc, title, x+float64(offset), y, ColorText)
	dc.Pop()
}

// drawBars paints the visualizer straight into the frame.
func (c *Composer) drawBars(img *image.RGBA, heights []float64) {
	n := len(heights)
	if n == 0 {
		return
	}
	pitch := (c.width - 2*Margin) / n
	baseY := c.height - BarBaseInset

	for i, h := range heights {
		barHeight := int(h * MaxBarHeight)
		if barHeight <= 0 {
			continue
		}
		x := Margin + i*pitch
		w := pitch - BarSpacing + 1
		if w < 1 {
			w = 1
		}

		for row := 0; row < barHeight; row++ {
			fillRow(img, x, baseY-row, w, visualizer.FireColor(float64(row)/MaxBarHeight))
		}

		top := barHeight - 1
		tip := visualizer.TipColor(float64(top) / MaxBarHeight)
		for _, r := range visualizer.FlameTip(c.rng) {
			fillRow(img, x, baseY-top-r, w, tip)
		}
	}
}

// SleepFrame returns the static sleep screen. It is built once.
func (c *Composer) SleepFrame() *image.RGBA {
	if c.sleepFrame == nil {
		c.sleepFrame = c.buildSleepFrame()
		c.log.Debug("sleep frame built (background=%t)", c.assets.Background != nil)
	}
	return c.sleepFrame
}

func (c *Composer) buildSleepFrame() *image.RGBA {
	dc := gg.NewContext(c.width, c.height)

	if c.assets.Background == nil {
		dc.SetColor(ColorBackground)
		dc.Clear()
		dc.SetFontFace(FallbackFace)
		line := strings.Join(c.sleepTitle, " ")
		dc.SetColor(color.White)
		dc.DrawStringAnchored(line, float64(c.width)/2, float64(c.height)/2, 0.5, 0.5)
		return dc.Image().(*image.RGBA)
	}

	dc.DrawImage(c.assets.Background, 0, 0)
	dc.SetFontFace(c.assets.Sleep)
	y := 80.0
	for _, line := range c.sleepTitle {
		w, _ := dc.MeasureString(line)
		x := math.Floor((float64(c.width) - w) / 2)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(line, x+ShadowOffset, y+ShadowOffset, 0, 1)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(line, x, y, 0, 1)
		y += 40
	}
	return dc.Image().(*image.RGBA)
}

// drawText draws s with its top-left corner at (x, y).
func drawText(dc *gg.Context, s string, x, y float64, col color.Color) {
	dc.SetColor(col)
	dc.DrawStringAnchored(s, x, y, 0, 1)
}

func drawShadowed(dc *gg.Context, s string, x, y float64, col color.Color) {
	drawText(dc, s, x+ShadowOffset, y+ShadowOffset, ColorShadow)
	drawText(dc, s, x, y, col)
}

func fillRow(img *image.RGBA, x, y, w int, col color.Color) {
	r := image.Rect(x, y, x+w, y+1).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func descent(face font.Face) float64 {
	return float64(face.Metrics().Descent.Ceil())
}
