package utils

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		wantW, wantH   int
	}{
		{"already inside the box", 800, 600, 800, 600},
		{"exactly at the bounds", 1024, 768, 1024, 768},
		{"both dimensions over", 2048, 1536, 1024, 768},
		{"wide width inside but height over", 1000, 900, 853, 768},
		{"tall height inside but width over", 1100, 700, 1024, 651},
		{"panorama", 4096, 512, 1024, 128},
		{"portrait", 768, 2048, 288, 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotW, gotH := fitWithin(tt.w, tt.h, MaxFotoWidth, MaxFotoHeight)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("fitWithin(%d, %d) = %dx%d, expected %dx%d",
					tt.w, tt.h, gotW, gotH, tt.wantW, tt.wantH)
			}
			if gotW > MaxFotoWidth || gotH > MaxFotoHeight {
				t.Errorf("result %dx%d exceeds the %dx%d bound",
					gotW, gotH, MaxFotoWidth, MaxFotoHeight)
			}
			if gotW > tt.w || gotH > tt.h {
				t.Errorf("result %dx%d upscales the %dx%d input",
					gotW, gotH, tt.w, tt.h)
			}
		})
	}
}

func encodeTestImage(t *testing.T, w, h int, asPNG bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var err error
	if asPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode compressed payload: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("compressed format = %q, expected jpeg", format)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestCompressImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		asPNG        bool
		wantW, wantH int
	}{
		{"small jpeg keeps its size", 640, 480, false, 640, 480},
		{"oversized jpeg is downscaled", 2048, 1536, false, 1024, 768},
		{"width inside but height over is never upscaled", 1000, 900, false, 853, 768},
		{"png is re-encoded as jpeg", 1200, 900, true, 1024, 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := CompressImage(encodeTestImage(t, tt.w, tt.h, tt.asPNG))
			if err != nil {
				t.Fatalf("CompressImage() error: %v", err)
			}
			gotW, gotH := decodedSize(t, out)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("compressed to %dx%d, expected %dx%d", gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCompressImageRejectsUndecodable(t *testing.T) {
	if _, err := CompressImage([]byte("not an image")); err == nil {
		t.Error("expected an error for an undecodable payload")
	}
}
