package views

// Handler receives the user's edits and commands from the main view. The
// controller implements it.
type Handler interface {
	SetInterval(hours, minutes, seconds string)
	SetTotal(hours, minutes, seconds string)
	SetImageCountText(text string)

	SetISOAuto(auto bool)
	SelectISO(label string)
	SetShutterAuto(auto bool)
	SelectShutter(fraction string)
	SelectResolution(label string)

	SetPrefix(prefix string)
	SetDirectory(dir string)
	SetMakeVideo(enabled bool)

	Start()
	Stop()
	Preview()
	TakeSnapshot()
}
