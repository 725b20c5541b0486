package conversion

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MatToImage converts an 8-bit GoCV Mat to a standard Go image.
// BGR and BGRA Mats become RGBA images; single-channel Mats become Gray.
func MatToImage(src gocv.Mat) (image.Image, error) {
	if src.Empty() {
		return nil, fmt.Errorf("cannot convert empty Mat")
	}

	rows := src.Rows()
	cols := src.Cols()

	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("Mat data access failed: %w", err)
	}

	switch src.Type() {
	case gocv.MatTypeCV8UC1:
		return matToGray(data, rows, cols), nil
	case gocv.MatTypeCV8UC3:
		return matBGRToRGBA(data, rows, cols), nil
	case gocv.MatTypeCV8UC4:
		return matBGRAToRGBA(data, rows, cols), nil
	default:
		return nil, fmt.Errorf("unsupported Mat type: %v", src.Type())
	}
}

// matToGray copies single-channel pixel data into a grayscale image
func matToGray(data []uint8, rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	copy(img.Pix, data[:rows*cols])
	return img
}

// matBGRToRGBA reorders BGR pixel data into an opaque RGBA image
func matBGRToRGBA(data []uint8, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for i, j := 0, 0; i < rows*cols*3; i, j = i+3, j+4 {
		img.Pix[j] = data[i+2]
		img.Pix[j+1] = data[i+1]
		img.Pix[j+2] = data[i]
		img.Pix[j+3] = 255
	}

	return img
}

// matBGRAToRGBA reorders BGRA pixel data into an RGBA image
func matBGRAToRGBA(data []uint8, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for i := 0; i < rows*cols*4; i += 4 {
		img.Pix[i] = data[i+2]
		img.Pix[i+1] = data[i+1]
		img.Pix[i+2] = data[i]
		img.Pix[i+3] = data[i+3]
	}

	return img
}
