package vkt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRGBAConvertsAndRebases(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.Set(10, 20, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.Set(12, 21, color.NRGBA{R: 0, G: 0, B: 255, A: 255})

	rgba := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Rect)
	assert.Equal(t, 12, rgba.Stride)
	assert.Equal(t, []uint8{255, 0, 0, 255}, rgba.Pix[0:4])
	assert.Equal(t, []uint8{0, 0, 255, 255}, rgba.Pix[rgba.PixOffset(2, 1):rgba.PixOffset(2, 1)+4])
}

func TestToRGBAKeepsPackedImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, src, ToRGBA(src))
}

func TestToRGBACopiesSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.SetRGBA(5, 6, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	sub := src.SubImage(image.Rect(4, 4, 8, 8)).(*image.RGBA)

	rgba := ToRGBA(sub)
	require.NotSame(t, sub, rgba)
	assert.Equal(t, image.Rect(0, 0, 4, 4), rgba.Rect)
	assert.Equal(t, 16, rgba.Stride)
	assert.Equal(t, color.RGBA{R: 9, G: 8, B: 7, A: 255}, rgba.RGBAAt(1, 2))
	assert.Equal(t, color.RGBA{}, rgba.RGBAAt(0, 0))
}

func TestDecodeImagePNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	rgba, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, 16, len(rgba.Pix))
	assert.Equal(t, []uint8{128, 128, 128, 255}, rgba.Pix[12:16])

	_, err = DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
