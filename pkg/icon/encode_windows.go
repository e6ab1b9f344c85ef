//go:build windows

package icon

import (
	"bytes"
	"fmt"
	"image"

	ico "github.com/sergeymakinen/go-ico"
)

// Encode produces ICO: the Windows tray rejects PNG data
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
