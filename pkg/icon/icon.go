// Package icon draws the tray glyph at runtime so the launcher ships without
// an image asset.
package icon

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	Size   = 64
	Margin = 10
)

var (
	Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff} // white
	Foreground = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff} // orange
)

// Render returns a Size x Size white image with an orange disc filling the
// inclusive box (Margin, Margin)-(Size-Margin, Size-Margin).
func Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	const center = Size / 2
	radius := float64(Size-2*Margin) / 2
	for y := Margin; y <= Size-Margin; y++ {
		for x := Margin; x <= Size-Margin; x++ {
			dx := float64(x - center)
			dy := float64(y - center)
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, Foreground)
			}
		}
	}
	return img
}

// Bytes renders the icon and encodes it in the format the platform tray expects
func Bytes() ([]byte, error) {
	return Encode(Render())
}
