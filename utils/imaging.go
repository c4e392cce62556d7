package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Downscale bounds mirror what the old capture flow produced; photos are
// recompressed to JPEG before hitting storage.
const (
	MaxFotoWidth    = 1024
	MaxFotoHeight   = 768
	fotoJPEGQuality = 80
)

// CompressImage decodes a JPEG or PNG payload, downscales it to fit inside
// MaxFotoWidth x MaxFotoHeight preserving aspect ratio, and re-encodes as
// JPEG. Images already inside the bounds are still recompressed, which keeps
// the output format uniform. Undecodable payloads are returned as an error,
// not passed through.
func CompressImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decodificar imagem: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	newW, newH := fitWithin(width, height, MaxFotoWidth, MaxFotoHeight)
	out := src
	if newW != width || newH != height {
		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: fotoJPEGQuality}); err != nil {
		return nil, fmt.Errorf("recomprimir imagem: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (w, h) down to fit inside (maxW, maxH), keeping the
// aspect ratio. Dimensions already inside the box are returned unchanged;
// the result is never larger than the input.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// scale by the tighter of the two bounds; cross-multiplying avoids
	// float rounding at the edges
	var newW, newH int
	if w*maxH <= h*maxW {
		newW, newH = w*maxH/h, maxH
	} else {
		newW, newH = maxW, h*maxW/w
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}
