package views

import (
	"image"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"bair-timelapse/internal/models"
	"bair-timelapse/internal/views/components"
)

// MainView is the control panel window. Its update methods may be called
// from any goroutine; they hop onto the UI thread with fyne.Do.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	intervalPanel *components.IntervalPanel
	cameraPanel   *components.CameraPanel
	outputPanel   *components.OutputPanel
	imageDisplay  *components.ImageDisplay
	statusBar     *components.StatusBar

	handler Handler
}

// NewMainView builds the panel into window, seeded with the initial camera
// and output settings
func NewMainView(window fyne.Window, settings models.CameraSettings, output models.OutputSettings) *MainView {
	view := &MainView{window: window}

	view.initializeComponents(settings, output)
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

// initializeComponents creates all UI components
func (mv *MainView) initializeComponents(settings models.CameraSettings, output models.OutputSettings) {
	mv.toolbar = components.NewToolbar()
	mv.intervalPanel = components.NewIntervalPanel()
	mv.cameraPanel = components.NewCameraPanel(settings)
	mv.outputPanel = components.NewOutputPanel(output)
	mv.imageDisplay = components.NewImageDisplay()
	mv.statusBar = components.NewStatusBar()
}

// buildLayout constructs the main layout
func (mv *MainView) buildLayout() {
	controls := container.NewVBox(
		mv.intervalPanel.GetContainer(),
		mv.cameraPanel.GetContainer(),
		mv.outputPanel.GetContainer(),
	)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		container.NewHSplit(controls, mv.imageDisplay.GetContainer()),
	)

	mv.window.SetContent(mv.mainContainer)
}

// setupEventHandlers forwards component events to the handler. Start and
// snapshot leave the UI thread because they block on the camera.
func (mv *MainView) setupEventHandlers() {
	mv.intervalPanel.SetIntervalHandler(func(h, m, s string) {
		if mv.handler != nil {
			mv.handler.SetInterval(h, m, s)
		}
	})
	mv.intervalPanel.SetTotalHandler(func(h, m, s string) {
		if mv.handler != nil {
			mv.handler.SetTotal(h, m, s)
		}
	})
	mv.intervalPanel.SetImageCountHandler(func(text string) {
		if mv.handler != nil {
			mv.handler.SetImageCountText(text)
		}
	})

	mv.cameraPanel.SetISOAutoHandler(func(auto bool) {
		if mv.handler != nil {
			mv.handler.SetISOAuto(auto)
		}
	})
	mv.cameraPanel.SetISOHandler(func(label string) {
		if mv.handler != nil {
			mv.handler.SelectISO(label)
		}
	})
	mv.cameraPanel.SetShutterAutoHandler(func(auto bool) {
		if mv.handler != nil {
			mv.handler.SetShutterAuto(auto)
		}
	})
	mv.cameraPanel.SetShutterHandler(func(fraction string) {
		if mv.handler != nil {
			mv.handler.SelectShutter(fraction)
		}
	})
	mv.cameraPanel.SetResolutionHandler(func(label string) {
		if mv.handler != nil {
			mv.handler.SelectResolution(label)
		}
	})
	mv.cameraPanel.SetPreviewHandler(func() {
		if mv.handler != nil {
			mv.handler.Preview()
		}
	})
	mv.cameraPanel.SetSnapshotHandler(func() {
		if mv.handler != nil {
			mv.handler.TakeSnapshot()
		}
	})

	mv.outputPanel.SetChooseHandler(mv.showFolderDialog)
	mv.outputPanel.SetPrefixHandler(func(prefix string) {
		if mv.handler != nil {
			mv.handler.SetPrefix(prefix)
		}
	})
	mv.outputPanel.SetVideoHandler(func(enabled bool) {
		if mv.handler != nil {
			mv.handler.SetMakeVideo(enabled)
		}
	})

	mv.toolbar.SetStartHandler(func() {
		if mv.handler != nil {
			go mv.handler.Start()
		}
	})
	mv.toolbar.SetStopHandler(func() {
		if mv.handler != nil {
			mv.handler.Stop()
		}
	})
}

// SetHandler connects the view to the controller
func (mv *MainView) SetHandler(handler Handler) {
	mv.handler = handler
}

func (mv *MainView) showFolderDialog() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, mv.window)
			return
		}
		if uri == nil {
			return
		}
		mv.outputPanel.SetDirectory(uri.Path())
		if mv.handler != nil {
			mv.handler.SetDirectory(uri.Path())
		}
	}, mv.window)
}

// UI update methods - called by controller

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetPhase updates the run buttons and locks the form while the camera is
// taken by a run or a snapshot
func (mv *MainView) SetPhase(phase models.RunPhase) {
	fyne.Do(func() {
		editable := phase.Editable()
		mv.toolbar.SetPhase(phase)
		mv.intervalPanel.SetEditable(editable)
		mv.outputPanel.SetEditable(editable)
		mv.cameraPanel.SetCameraBusy(!editable)
	})
}

// UpdateProgress shows done of total frames
func (mv *MainView) UpdateProgress(done, total int) {
	fyne.Do(func() {
		mv.statusBar.SetProgress(done, total)
	})
}

// SetImageCount shows the recomputed image number
func (mv *MainView) SetImageCount(count int) {
	fyne.Do(func() {
		mv.intervalPanel.SetImageCount(count)
	})
}

// SetTotalTime shows the recomputed total time
func (mv *MainView) SetTotalTime(total models.HMS) {
	fyne.Do(func() {
		mv.intervalPanel.SetTotalTime(total)
	})
}

func (mv *MainView) SetISOSelectorEnabled(enabled bool) {
	fyne.Do(func() {
		mv.cameraPanel.SetISOSelectorEnabled(enabled)
	})
}

func (mv *MainView) SetShutterSelectorEnabled(enabled bool) {
	fyne.Do(func() {
		mv.cameraPanel.SetShutterSelectorEnabled(enabled)
	})
}

// SetThumbnail shows the latest frame or snapshot
func (mv *MainView) SetThumbnail(img image.Image) {
	fyne.Do(func() {
		mv.imageDisplay.SetImage(img)
	})
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(err, mv.window)
	})
}

// ChooseSnapshotDestination asks for a JPEG file to save the snapshot to.
// callback receives nil when the dialog is cancelled.
func (mv *MainView) ChooseSnapshotDestination(callback func(io.WriteCloser, error)) {
	fyne.Do(func() {
		save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				callback(nil, err)
				return
			}
			go callback(writer, nil)
		}, mv.window)
		save.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg"}))
		save.SetFileName("snapshot.jpg")
		save.Show()
	})
}

// Show displays the view
func (mv *MainView) Show() {
	mv.window.Show()
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

func (mv *MainView) GetContainer() *fyne.Container {
	return mv.mainContainer
}

func (mv *MainView) Toolbar() *components.Toolbar {
	return mv.toolbar
}

func (mv *MainView) IntervalPanel() *components.IntervalPanel {
	return mv.intervalPanel
}

func (mv *MainView) CameraPanel() *components.CameraPanel {
	return mv.cameraPanel
}

func (mv *MainView) OutputPanel() *components.OutputPanel {
	return mv.outputPanel
}

func (mv *MainView) StatusBar() *components.StatusBar {
	return mv.statusBar
}

func (mv *MainView) ImageDisplay() *components.ImageDisplay {
	return mv.imageDisplay
}
