//go:build !windows

package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Encode produces PNG, which the macOS and Linux trays accept
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
