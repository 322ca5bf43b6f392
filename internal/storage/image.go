package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

// MaxImagePixels caps width*height read from an image header before decoding.
const MaxImagePixels = 40_000_000

var (
	ErrUnsupportedImage = errors.New("unsupported image type: only jpeg, png and webp are accepted")
	// ErrInvalidImage marks input that sniffs as an image but cannot be used:
	// corrupt data or dimensions over MaxImagePixels.
	ErrInvalidImage = errors.New("invalid image")
)

// Image is an uploaded image file held in memory.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DetectImageType sniffs the content type from the bytes; the declared type is not trusted.
func DetectImageType(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case ContentTypeJPEG, ContentTypePNG, ContentTypeWebP:
		return ct, nil
	}
	return "", ErrUnsupportedImage
}

// ScaleToWidth shrinks images wider than maxWidth, keeping the aspect ratio.
// Narrower images are returned untouched. WebP input is re-encoded as JPEG.
// Dimensions are checked from the header before any pixels are decoded.
func ScaleToWidth(data []byte, maxWidth int) ([]byte, string, error) {
	contentType, err := DetectImageType(data)
	if err != nil {
		return nil, "", err
	}

	var decodeConfig func(io.Reader) (image.Config, error)
	var decode func(io.Reader) (image.Image, error)
	switch contentType {
	case ContentTypeJPEG:
		decodeConfig, decode = jpeg.DecodeConfig, jpeg.Decode
	case ContentTypePNG:
		decodeConfig, decode = png.DecodeConfig, png.Decode
	case ContentTypeWebP:
		decodeConfig, decode = webp.DecodeConfig, webp.Decode
	}

	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: unreadable %s header: %v", ErrInvalidImage, contentType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, "", fmt.Errorf("%w: %dx%d is outside the %d pixel limit", ErrInvalidImage, cfg.Width, cfg.Height, MaxImagePixels)
	}

	src, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidImage, contentType, err)
	}

	bounds := src.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		if contentType != ContentTypeWebP {
			return data, contentType, nil
		}
		return encode(src, ContentTypeJPEG)
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	if contentType == ContentTypeWebP {
		contentType = ContentTypeJPEG
	}
	return encode(dst, contentType)
}

func encode(img image.Image, contentType string) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error
	if contentType == ContentTypePNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", contentType, err)
	}
	return buf.Bytes(), contentType, nil
}

func extension(contentType string) string {
	if contentType == ContentTypePNG {
		return ".png"
	}
	return ".jpg"
}

// ImageUploader scales images and writes them to object storage under a folder.
type ImageUploader struct {
	store    ObjectStorage
	maxWidth int
}

func NewImageUploader(store ObjectStorage, maxWidth int) *ImageUploader {
	return &ImageUploader{store: store, maxWidth: maxWidth}
}

// UploadImage stores img as <folder>/<uuid>.<ext> and returns its URL.
func (u *ImageUploader) UploadImage(ctx context.Context, folder string, img Image) (string, error) {
	data, contentType, err := ScaleToWidth(img.Data, u.maxWidth)
	if err != nil {
		return "", err
	}
	key := path.Join(folder, uuid.NewString()+extension(contentType))
	return u.store.Upload(ctx, key, contentType, data)
}
