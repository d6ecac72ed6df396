// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates thumbnails for uploaded images. Pure Go:
// stdlib decoders plus golang.org/x/image for high-quality scaling.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif" // register GIF decoder

	"golang.org/x/image/draw"
)

// ThumbWidth is the target thumbnail width in pixels.
const ThumbWidth = 320

// jpegQuality balances size against quality for thumbnails.
const jpegQuality = 80

// Thumbnail scales the image down to ThumbWidth, preserving aspect ratio.
// Images already narrower than the target are returned re-encoded but not
// upscaled. PNG sources stay PNG (to keep transparency); everything else
// becomes JPEG. Returns the encoded bytes and their content type.
func Thumbnail(data []byte) ([]byte, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	targetW := ThumbWidth
	if width <= targetW {
		targetW = width
	}
	targetH := height * targetW / width
	if targetH < 1 {
		targetH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encode thumbnail: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
