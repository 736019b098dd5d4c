package pressfront

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/pressfront/imageurl"
)

// defaultOGImagePath serves the social card used when a page has no image.
const defaultOGImagePath = "/og/default.png"

var (
	ogBackground = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	ogAccent     = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
)

type ogImage struct {
	once sync.Once
	data []byte
	err  error
}

// renderOGImage draws the fallback social card: a solid background with an
// accent band and, when logo is non-nil, the logo scaled to fit the middle
// half of the card.
func renderOGImage(logo image.Image) ([]byte, error) {
	w, h := imageurl.SocialWidth, imageurl.SocialHeight
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: ogBackground}, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, h-24, w, h), &image.Uniform{C: ogAccent}, image.Point{}, draw.Src)

	if logo != nil {
		b := logo.Bounds()
		maxW, maxH := w/2, h/2
		lw, lh := b.Dx(), b.Dy()
		if lw > 0 && lh > 0 {
			// Fit inside maxW×maxH keeping the aspect ratio.
			if lw*maxH > lh*maxW {
				lh = lh * maxW / lw
				lw = maxW
			} else {
				lw = lw * maxH / lh
				lh = maxH
			}
			x0, y0 := (w-lw)/2, (h-lh)/2
			draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+lw, y0+lh), logo, b, draw.Over, nil)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func loadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}

func (a *App) defaultOGImage() ([]byte, error) {
	a.ogImage.once.Do(func() {
		var logo image.Image
		if a.Config.LogoPath != "" {
			img, err := loadLogo(a.Config.LogoPath)
			if err != nil {
				a.Logger.Warn("social card logo unavailable", "path", a.Config.LogoPath, "err", err)
			} else {
				logo = img
			}
		}
		a.ogImage.data, a.ogImage.err = renderOGImage(logo)
	})
	return a.ogImage.data, a.ogImage.err
}

func (a *App) handleDefaultOGImage(c echo.Context) error {
	data, err := a.defaultOGImage()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
