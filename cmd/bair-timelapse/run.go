package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"bair-timelapse/internal/app"
	"bair-timelapse/internal/controllers"
	"bair-timelapse/internal/models"
	"bair-timelapse/internal/views"
)

func newRunCmd(opts *options) *cobra.Command {
	s := &schedule{}
	var (
		prefix string
		dir    string
		video  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture a timelapse without opening the window",
		Example: `  # One frame a minute for eight hours into ./garden
  bair-timelapse run --interval 1m --total 8h --dir garden --prefix garden_

  # 100 frames, no video
  bair-timelapse run --interval 5s --count 100 --video=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := s.form(cmd.Flags().Changed("count"))
			if err != nil {
				return err
			}
			if form.Count == 0 {
				return controllers.ErrNothingToCapture
			}

			cfg := opts.cfg
			if cmd.Flags().Changed("prefix") {
				cfg.Output.Prefix = prefix
			}
			if cmd.Flags().Changed("dir") {
				cfg.Output.Directory = dir
			}
			if cmd.Flags().Changed("video") {
				cfg.Output.Video = video
			}

			lifecycle, err := app.NewLifecycle(cfg, opts.log)
			if err != nil {
				return err
			}
			defer lifecycle.Shutdown()

			controller := lifecycle.Controller
			controller.SetMainView(newConsoleView(cmd.OutOrStdout()))
			applyForm(controller, form, cmd.Flags().Changed("count"))

			finished := make(chan controllers.RunResult, 1)
			controller.SetRunFinishedHandler(func(result controllers.RunResult) {
				select {
				case finished <- result:
				default:
				}
			})

			controller.Start()

			var result controllers.RunResult
			select {
			case result = <-finished:
			case <-cmd.Context().Done():
				controller.Stop()
				result = <-finished
			}
			controller.Wait()

			return summarize(cmd.OutOrStdout(), result)
		},
	}

	s.addFlags(cmd)
	cmd.Flags().StringVar(&prefix, "prefix", models.DefaultPrefix, "frame file name prefix")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default current directory)")
	cmd.Flags().BoolVar(&video, "video", true, "assemble a video when the run completes")

	return cmd
}

// applyForm pushes the reconciled schedule through the same setters the
// panel uses
func applyForm(mc *controllers.MainController, form *models.TimelapseForm, byCount bool) {
	i := form.Interval
	mc.SetInterval(strconv.Itoa(i.Hours), strconv.Itoa(i.Minutes), strconv.Itoa(i.Seconds))
	if byCount {
		mc.SetImageCountText(strconv.Itoa(form.Count))
		return
	}
	t := form.Total
	mc.SetTotal(strconv.Itoa(t.Hours), strconv.Itoa(t.Minutes), strconv.Itoa(t.Seconds))
}

func summarize(w io.Writer, result controllers.RunResult) error {
	switch {
	case result.Stopped:
		fmt.Fprintf(w, "stopped after %d of %d frames\n", result.Frames, result.Planned)
	case result.Video != "":
		fmt.Fprintf(w, "captured %d frames, video %s\n", result.Frames, result.Video)
	default:
		fmt.Fprintf(w, "captured %d of %d frames\n", result.Frames, result.Planned)
	}
	return result.Err
}

// consoleView prints status changes for headless runs
type consoleView struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func newConsoleView(out io.Writer) *consoleView {
	return &consoleView{out: out}
}

var _ controllers.View = (*consoleView)(nil)

func (v *consoleView) UpdateStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if status == v.last {
		return
	}
	v.last = status
	fmt.Fprintln(v.out, status)
}

func (v *consoleView) ShowError(title string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%s: %v\n", title, err)
}

func (v *consoleView) ChooseSnapshotDestination(callback func(io.WriteCloser, error)) {
	callback(nil, errors.New("snapshots need the control panel"))
}

func (v *consoleView) SetHandler(views.Handler)       {}
func (v *consoleView) SetPhase(models.RunPhase)       {}
func (v *consoleView) UpdateProgress(int, int)        {}
func (v *consoleView) SetImageCount(int)              {}
func (v *consoleView) SetTotalTime(models.HMS)        {}
func (v *consoleView) SetISOSelectorEnabled(bool)     {}
func (v *consoleView) SetShutterSelectorEnabled(bool) {}
func (v *consoleView) SetThumbnail(image.Image)       {}
