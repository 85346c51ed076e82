package inkpress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxCoverWidth     = 1600
	defaultCoverWidth = 800
	coverJpegQuality  = 80
	coversSubdir      = "covers"
)

// resizeCover decodes an image, scales it down to at most width pixels wide
// (aspect preserved, never upscaled), and re-encodes it as JPEG.
func resizeCover(src []byte, width int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: coverJpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// handleCover serves a post's cover asset from the static directory, resized
// to the requested width. Covers are referenced by the Post.Image field.
func (a *App) handleCover(c echo.Context) error {
	// filepath.Base strips any traversal segments from the parameter.
	name := filepath.Base(c.Param("name"))
	if name == "." || name == string(filepath.Separator) {
		return c.NoContent(http.StatusNotFound)
	}

	width := defaultCoverWidth
	if v := c.QueryParam("w"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 {
			return c.NoContent(http.StatusBadRequest)
		}
		if n > maxCoverWidth {
			n = maxCoverWidth
		}
		width = n
	}

	raw, err := os.ReadFile(filepath.Join(a.staticDir, coversSubdir, name))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	data, err := resizeCover(raw, width)
	if err != nil {
		c.Logger().Warnf("cover %s: %v", name, err)
		return c.NoContent(http.StatusUnsupportedMediaType)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
