package main

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/elijahnyp/device_panels/panels"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const (
	gaugeMinWidth  = 40
	gaugeMinHeight = 20
	gaugeMaxWidth  = 1024
	gaugeMaxHeight = 128
	gaugeBorder    = 2
)

var (
	gaugeBackground = color.RGBA{34, 34, 34, 255}
	gaugeFrame      = color.RGBA{64, 64, 64, 255}
	gaugeDefault    = color.RGBA{64, 106, 140, 255}
)

// parseHex reads #RRGGBB. ok is false for anything else.
func parseHex(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
}

func fillColor(name string) color.RGBA {
	if c, ok := parseHex(panels.Hex(name)); ok {
		return c
	}
	return gaugeDefault
}

// DrawGauge renders a progress bar with its text centred on top.
func DrawGauge(bar panels.ProgressBar, width, height int) image.Image {
	if width < gaugeMinWidth {
		width = gaugeMinWidth
	}
	if height < gaugeMinHeight {
		height = gaugeMinHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(gaugeFrame), image.Point{}, draw.Src)

	inner := img.Bounds().Inset(gaugeBorder)
	draw.Draw(img, inner, image.NewUniform(gaugeBackground), image.Point{}, draw.Src)

	filled := int(float64(inner.Dx()) * bar.Fraction())
	if filled > 0 {
		fill := image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+filled, inner.Max.Y)
		draw.Draw(img, fill, image.NewUniform(fillColor(bar.Color)), image.Point{}, draw.Src)
	}

	if bar.Text != "" {
		face := inconsolata.Bold8x16
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
		}
		textWidth := d.MeasureString(bar.Text).Ceil()
		x := (width - textWidth) / 2
		if x < gaugeBorder {
			x = gaugeBorder
		}
		metrics := face.Metrics()
		y := (height + metrics.Ascent.Ceil() - metrics.Descent.Ceil()) / 2
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
		d.DrawString(bar.Text)
	}
	return img
}
