package storage

import (
	"errors"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var ErrNotAnImage = errors.New("data is not a decodable image")

type ImageInfo struct {
	Width       int
	Height      int
	ContentType string
}

// ProbeImage reads just enough of r to learn the image format and pixel
// size. The caller must rewind r before storing it.
func ProbeImage(r io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return ImageInfo{}, ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, ErrNotAnImage
	}
	return ImageInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		ContentType: "image/" + format,
	}, nil
}
