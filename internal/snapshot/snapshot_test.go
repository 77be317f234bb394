package snapshot

import (
	"bytes"
	"image/png"
	"testing"
)

func TestEncodeProducesDecodablePNG(t *testing.T) {
	pixels := make([]byte, screenW*screenH)
	pixels[0] = 1
	pixels[screenW*screenH-1] = 1

	var buf bytes.Buffer
	status := Status{TPS: 700, DT: 10, ST: 3, Sound: true}
	if err := Encode(&buf, pixels, status); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	wantW := screenW * scale
	wantH := screenH*scale + statusBarHeight
	if bounds.Dx() != wantW || bounds.Dy() != wantH {
		t.Errorf("expected %dx%d, got %dx%d", wantW, wantH, bounds.Dx(), bounds.Dy())
	}
}

func TestEncodeRejectsWrongPixelCount(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, make([]byte, 10), Status{})
	if err == nil {
		t.Error("Encode should reject a pixel slice of the wrong length")
	}
}

func TestStatusLineDefaultsAndOverride(t *testing.T) {
	s := Status{TPS: 500, DT: 1, ST: 2, Sound: false}
	if got := s.line(); got != "tps=500 dt=1 st=2 sound=off" {
		t.Errorf("unexpected default status line: %q", got)
	}

	s.Message = "custom"
	if got := s.line(); got != "custom" {
		t.Errorf("Message should override the default line, got %q", got)
	}
}
