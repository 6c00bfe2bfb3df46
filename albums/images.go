package albums

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for dimension probing
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const thumbWidth = 480

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// imageDimensions reads just the header of an image file.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ensureThumbnail generates (or reuses) a JPEG thumbnail for the photo and
// returns its path relative to the thumbnails root.
func (s *Scanner) ensureThumbnail(albumName, srcPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	relThumb := filepath.Join(albumName, base+".jpg")
	thumbPath := filepath.Join(s.thumbsDir, relThumb)

	srcStat, err := os.Stat(srcPath)
	if err != nil {
		return "", err
	}
	if thumbStat, err := os.Stat(thumbPath); err == nil && thumbStat.ModTime().After(srcStat.ModTime()) {
		return relThumb, nil
	}

	img, err := openImage(srcPath)
	if err != nil {
		return "", err
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		return "", err
	}
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(82)); err != nil {
		return "", err
	}
	return relThumb, nil
}

// openImage decodes a source photo, handling webp separately since imaging
// only knows the stdlib formats.
func openImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f)
	}
	return imaging.Open(path)
}
