package memobird

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
)

// BMP header sizes: 14-byte file header, 40-byte BITMAPINFOHEADER and a
// two-entry palette (black, white).
const (
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpPaletteSize    = 2 * 4
	bmpDataOffset     = bmpFileHeaderSize + bmpInfoHeaderSize + bmpPaletteSize
)

// encodeMonoBMP encodes a grayscale image as an uncompressed 1-bit BMP,
// the format the printer service requires for image parts. Pixels with
// luminance at or above 50% become white (palette index 1); rows are
// stored bottom-up and padded to 4-byte boundaries.
func encodeMonoBMP(img *image.Gray) ([]byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image has empty bounds %v", bounds)
	}

	rowSize := ((width + 31) / 32) * 4
	dataSize := rowSize * height
	fileSize := bmpDataOffset + dataSize

	buf := bytes.NewBuffer(make([]byte, 0, fileSize))

	// File header.
	buf.WriteString("BM")
	binary.Write(buf, binary.LittleEndian, uint32(fileSize))
	binary.Write(buf, binary.LittleEndian, uint32(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint32(bmpDataOffset))

	// Info header.
	binary.Write(buf, binary.LittleEndian, uint32(bmpInfoHeaderSize))
	binary.Write(buf, binary.LittleEndian, int32(width))
	binary.Write(buf, binary.LittleEndian, int32(height)) // positive: bottom-up
	binary.Write(buf, binary.LittleEndian, uint16(1))     // planes
	binary.Write(buf, binary.LittleEndian, uint16(1))     // bits per pixel
	binary.Write(buf, binary.LittleEndian, uint32(0))     // no compression
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(buf, binary.LittleEndian, int32(2835)) // 72 DPI
	binary.Write(buf, binary.LittleEndian, int32(2835))
	binary.Write(buf, binary.LittleEndian, uint32(2)) // palette entries
	binary.Write(buf, binary.LittleEndian, uint32(0))

	// Palette: index 0 black, index 1 white (BGRA order, alpha unused).
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0x00})

	row := make([]byte, rowSize)
	for y := height - 1; y >= 0; y-- {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < width; x++ {
			if img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y >= 0x80 {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		buf.Write(row)
	}

	return buf.Bytes(), nil
}
