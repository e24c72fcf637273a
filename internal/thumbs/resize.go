package thumbs

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/disintegration/imaging"
)

// VariantWidths are the widths generated for each image, largest first.
var VariantWidths = []int{500, 250, 100}

// VariantLocator returns the deterministic locator of a resized variant.
func VariantLocator(baseLocator string, width int) string {
	return baseLocator + "_" + strconv.Itoa(width)
}

// GenerateVariants decodes an image and produces one resized copy per
// variant width, preserving aspect ratio. The encoded format follows the
// file name's extension, falling back to JPEG.
func GenerateVariants(data []byte, name string) (map[int][]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		format = imaging.JPEG
	}

	variants := make(map[int][]byte, len(VariantWidths))
	for _, width := range VariantWidths {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, resized, format); err != nil {
			return nil, fmt.Errorf("encode %d variant: %w", width, err)
		}
		variants[width] = buf.Bytes()
	}
	return variants, nil
}
