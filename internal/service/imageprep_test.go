package service

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareBytesReencodesAsJPEG(t *testing.T) {
	prep := NewImagePrepService()
	encoded := prep.PrepareBytes(pngBytes(t, 64, 48))

	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestPrepareBytesDownscalesWideImages(t *testing.T) {
	prep := NewImagePrepService()
	encoded := prep.PrepareBytes(pngBytes(t, 2048, 512))

	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestPrepareBytesFallsBackOnUndecodableInput(t *testing.T) {
	prep := NewImagePrepService()
	garbage := []byte("definitely not an image")

	encoded := prep.PrepareBytes(garbage)
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
}

func TestPrepareReadsFile(t *testing.T) {
	prep := NewImagePrepService()
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 32, 32), 0o644))

	encoded, err := prep.Prepare(path)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	_, err = prep.Prepare(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestOptimizeReturnsOriginalOnFailure(t *testing.T) {
	prep := NewImagePrepService()
	garbage := []byte{0x00, 0x01}
	assert.Equal(t, garbage, prep.Optimize(garbage))
}
