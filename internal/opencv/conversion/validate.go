package conversion

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MaxDimension bounds the width and height of any frame the camera or
// encoder is asked to handle
const MaxDimension = 32768

// ValidateDimensions rejects sizes OpenCV cannot allocate
func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

// ValidateFrame checks that mat holds an 8-bit image of the expected size.
// A zero width or height accepts any size.
func ValidateFrame(mat gocv.Mat, width, height int, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("frame is empty for operation: %s", operation)
	}

	if err := ValidateDimensions(mat.Cols(), mat.Rows(), operation); err != nil {
		return err
	}

	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return fmt.Errorf("unsupported frame type %v for operation: %s", mat.Type(), operation)
	}

	if width > 0 && height > 0 && (mat.Cols() != width || mat.Rows() != height) {
		return fmt.Errorf("frame is %dx%d, expected %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), width, height, operation)
	}

	return nil
}
