package main

import (
	"image/color"
	"math"
	"testing"

	"github.com/elijahnyp/device_panels/panels"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		input    string
		expected color.RGBA
		ok       bool
	}{
		{"#20B142", color.RGBA{0x20, 0xB1, 0x42, 255}, true},
		{"#ff8c00", color.RGBA{0xFF, 0x8C, 0x00, 255}, true},
		{"green", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
		{"#GGGGGG", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseHex(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("parseHex(%q) = %v, %v; expected %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestDrawGauge(t *testing.T) {
	bar := panels.ProgressBar{Value: 50, Min: 0, Max: 100, Color: "green", Text: "50 %"}
	img := DrawGauge(bar, 240, 20)

	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, expected 240x20", b)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)); got != gaugeFrame {
		t.Errorf("frame pixel = %v, expected %v", got, gaugeFrame)
	}
	if got := color.RGBAModel.Convert(img.At(5, 10)); got != (color.RGBA{0x20, 0xB1, 0x42, 255}) {
		t.Errorf("filled pixel = %v, expected green", got)
	}
	if got := color.RGBAModel.Convert(img.At(230, 10)); got != gaugeBackground {
		t.Errorf("empty pixel = %v, expected background", got)
	}
}

func TestDrawGauge_DefaultColor(t *testing.T) {
	// deuterium bars have no color of their own
	img := DrawGauge(panels.ProgressBar{Value: 100, Max: 100, Color: ""}, 100, 20)
	if got := color.RGBAModel.Convert(img.At(5, 10)); got != gaugeDefault {
		t.Errorf("filled pixel = %v, expected default bar color", got)
	}
}

func TestDrawGauge_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		bar  panels.ProgressBar
		w, h int
	}{
		{"tiny size", panels.ProgressBar{Value: 1, Max: 2}, 1, 1},
		{"nan value", panels.ProgressBar{Value: math.NaN(), Max: 100}, 100, 20},
		{"zero range", panels.ProgressBar{Value: 5}, 100, 20},
		{"overfull", panels.ProgressBar{Value: 500, Max: 100, Text: "a very long label that will not fit"}, 100, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := DrawGauge(tt.bar, tt.w, tt.h)
			b := img.Bounds()
			if b.Dx() < gaugeMinWidth || b.Dy() < gaugeMinHeight {
				t.Errorf("bounds %v below minimum", b)
			}
		})
	}
}
