package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 320
	ImageAreaHeight = 240
)

// ImageDisplay shows the latest frame or snapshot
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	placeholder image.Image
	hasImage    bool
}

// NewImageDisplay creates a new image display component
func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.placeholder = placeholderImage()

	id.image = canvas.NewImageFromImage(id.placeholder)
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScaleSmooth
	id.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
}

// placeholderImage is a light grey field with a border
func placeholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ImageAreaWidth, ImageAreaHeight))

	lightGray := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	borderColor := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < ImageAreaHeight; y++ {
		for x := 0; x < ImageAreaWidth; x++ {
			if x == 0 || y == 0 || x == ImageAreaWidth-1 || y == ImageAreaHeight-1 {
				img.Set(x, y, borderColor)
			} else {
				img.Set(x, y, lightGray)
			}
		}
	}
	return img
}

func (id *ImageDisplay) setupLayout() {
	id.container = container.NewBorder(
		widget.NewRichTextFromMarkdown("**Last frame**"),
		nil, nil, nil,
		container.NewStack(
			canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255}),
			id.image,
		),
	)
}

// SetImage shows img, or the placeholder for nil
func (id *ImageDisplay) SetImage(img image.Image) {
	if img != nil {
		id.image.Image = img
		id.hasImage = true
	} else {
		id.image.Image = id.placeholder
		id.hasImage = false
	}
	id.image.Refresh()
}

// HasImage reports whether a frame is shown
func (id *ImageDisplay) HasImage() bool {
	return id.hasImage
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
