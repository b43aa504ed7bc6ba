package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ImagePrepService shrinks a captured photo and encodes it for embedding in
// a provider request body.
type ImagePrepService struct {
	maxWidth int
	quality  int
}

// NewImagePrepService uses the capture-flow defaults: downscale to 1024px
// wide, re-encode JPEG at quality 60.
func NewImagePrepService() *ImagePrepService {
	return &ImagePrepService{maxWidth: 1024, quality: 60}
}

// Prepare reads the photo at path, optimizes it and returns the base64
// payload. If optimization fails the original bytes are encoded unmodified;
// a slower upload beats a blocked capture flow. The only error is an
// unreadable file.
func (s *ImagePrepService) Prepare(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	return s.PrepareBytes(data), nil
}

// PrepareBytes optimizes in-memory image bytes and returns the base64
// payload, falling back to the original bytes when the image cannot be
// decoded or re-encoded.
func (s *ImagePrepService) PrepareBytes(data []byte) string {
	optimized, err := s.optimize(data)
	if err != nil {
		log.Printf("[ImagePrep] optimization failed, using original image: %v", err)
		return base64.StdEncoding.EncodeToString(data)
	}
	return base64.StdEncoding.EncodeToString(optimized)
}

// Optimize downsamples and re-encodes image bytes, returning the original
// bytes when the image cannot be processed.
func (s *ImagePrepService) Optimize(data []byte) []byte {
	optimized, err := s.optimize(data)
	if err != nil {
		log.Printf("[ImagePrep] optimization failed, using original image: %v", err)
		return data
	}
	return optimized
}

// optimize downsamples to the bounded width and re-encodes as JPEG.
func (s *ImagePrepService) optimize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > s.maxWidth {
		height = height * s.maxWidth / width
		width = s.maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
