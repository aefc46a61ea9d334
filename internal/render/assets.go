package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/hammamikhairi/valplayer/internal/config"
	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// Assets are the fonts and images used by the composer. Background may be
// nil, in which case the sleep screen is drawn synthetically.
type Assets struct {
	Title      font.Face
	Info       font.Face
	Sleep      font.Face
	Background image.Image
}

// FallbackFace is used whenever a TrueType font cannot be loaded.
var FallbackFace font.Face = basicfont.Face7x13

// LoadFace loads a TrueType font at the given point size.
func LoadFace(path string, points float64) (font.Face, error) {
	face, err := gg.LoadFontFace(path, points)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w: %v", path, domain.ErrAssetLoad, err)
	}
	return face, nil
}

// LoadBackground loads an image and scales it to w x h.
func LoadBackground(path string, w, h int) (image.Image, error) {
	src, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w: %v", path, domain.ErrAssetLoad, err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// LoadAssets loads every asset named in cfg. Each failure is logged and
// replaced by its fallback; LoadAssets never fails.
func LoadAssets(cfg config.Assets, w, h int, log *logger.Logger) Assets {
	var a Assets

	face := func(path string, size float64) font.Face {
		if path == "" {
			return FallbackFace
		}
		f, err := LoadFace(path, size)
		if err != nil {
			log.Warn("using default font: %v", err)
			return FallbackFace
		}
		return f
	}
	a.Title = face(cfg.TitleFont, cfg.TitleSize)
	a.Info = face(cfg.InfoFont, cfg.InfoSize)
	a.Sleep = face(cfg.TitleFont, cfg.SleepSize)

	if cfg.Background != "" {
		bg, err := LoadBackground(cfg.Background, w, h)
		if err != nil {
			log.Warn("using plain sleep screen: %v", err)
		} else {
			a.Background = bg
		}
	}
	return a
}

// DefaultAssets uses the built-in face everywhere and no background.
func DefaultAssets() Assets {
	return Assets{Title: FallbackFace, Info: FallbackFace, Sleep: FallbackFace}
}
