package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/gen2brain/webp"

	"github.com/kvalheim/littleamap/internal/mcmap"
)

// writeImage emits canvas as a PNG or WebP file depending on r.cfg.Format
// and stamps its mtime to modified. PNG builds a palette containing only
// the indices actually observed on the canvas (usually a small fraction of
// the full base table); WebP has no indexed mode in the stdlib ecosystem,
// so it's expanded to RGB first and encoded lossless, which is
// quantization-free for data that was already paletted going in.
func (r *renderer) writeImage(path string, canvas *mcmap.Canvas, modified time.Time) error {
	var err error
	switch r.cfg.Format {
	case "webp":
		err = writeCanvasWebP(path, canvas, r.palette)
	default:
		err = writeCanvasPNG(path, canvas, r.palette)
	}
	if err != nil {
		return fmt.Errorf("writing tile image %s: %w", path, err)
	}
	return os.Chtimes(path, modified, modified)
}

// writeCanvasPNG remaps the canvas's observed indices to a dense 0..n
// palette in first-observed order and encodes it as an indexed PNG.
func writeCanvasPNG(path string, canvas *mcmap.Canvas, palette mcmap.Palette) error {
	dense := make([]uint8, 0, 16)
	remap := make(map[uint8]uint8, 16)
	for _, idx := range canvas.Pixels {
		if _, ok := remap[idx]; ok {
			continue
		}
		remap[idx] = uint8(len(dense))
		dense = append(dense, idx)
	}

	pal := make(color.Palette, len(dense))
	for i, idx := range dense {
		pal[i] = palette.RGBA(idx)
	}

	img := image.NewPaletted(image.Rect(0, 0, 128, 128), pal)
	for i, idx := range canvas.Pixels {
		img.Pix[i] = remap[idx]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(f, img)
}

// writeCanvasWebP expands the canvas to RGBA by palette lookup and encodes
// it lossless at the highest quality, since the source data is already
// paletted and has nothing left for lossy quantization to win back.
func writeCanvasWebP(path string, canvas *mcmap.Canvas, palette mcmap.Palette) error {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for i, idx := range canvas.Pixels {
		img.Set(i%128, i/128, palette.RGBA(idx))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return webp.Encode(f, img, webp.Options{Lossless: true, Quality: 100})
}
