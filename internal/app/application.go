// Package app assembles the camera, services, controller and window into
// the running control panel.
package app

import (
	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"bair-timelapse/internal/views"
)

const (
	AppName = "BAIR Timelapse"
	AppID   = "org.bair.timelapse"

	MinWindowWidth  = 900
	MinWindowHeight = 640
)

// Application is the GUI front end over a Lifecycle
type Application struct {
	fyneApp   fyne.App
	window    fyne.Window
	view      *views.MainView
	lifecycle *Lifecycle
}

// NewApplication creates the window and attaches the view to the controller
func NewApplication(lifecycle *Lifecycle, version string) *Application {
	fyneapp.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: version,
	})
	fyneApp := fyneapp.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(MinWindowWidth, MinWindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	controller := lifecycle.Controller
	view := views.NewMainView(window, controller.CameraSettings(), controller.Output())
	controller.SetMainView(view)

	lifecycle.Logger.Info("Application", "window created", map[string]interface{}{
		"version": version,
		"width":   MinWindowWidth,
		"height":  MinWindowHeight,
	})

	return &Application{
		fyneApp:   fyneApp,
		window:    window,
		view:      view,
		lifecycle: lifecycle,
	}
}

// Run shows the window and blocks until it is closed
func (a *Application) Run() error {
	log := a.lifecycle.Logger

	a.window.SetCloseIntercept(func() {
		log.Info("Application", "shutdown requested", nil)
		a.shutdown()
		a.window.Close()
	})

	a.lifecycle.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.view.Show()
	log.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	return a.shutdown()
}

func (a *Application) shutdown() error {
	err := a.lifecycle.Shutdown()
	if err != nil {
		a.lifecycle.Logger.Error("Application", err, nil)
	}
	return err
}
