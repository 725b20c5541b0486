package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"bair-timelapse/internal/models"
)

// schedule holds the --interval, --total and --count flags shared by plan
// and run
type schedule struct {
	interval time.Duration
	total    time.Duration
	count    int
}

func (s *schedule) addFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&s.interval, "interval", 0, "time between frames, e.g. 10s or 1m30s")
	cmd.Flags().DurationVar(&s.total, "total", 0, "run length, e.g. 1h")
	cmd.Flags().IntVar(&s.count, "count", 0, "number of frames; overrides --total")
	cmd.MarkFlagsMutuallyExclusive("total", "count")
}

// form reconciles the flags the same way the panel does: the interval and
// total time give the image count, or the image count gives the total time
func (s *schedule) form(countSet bool) (*models.TimelapseForm, error) {
	if s.interval < time.Second {
		return nil, errors.New("--interval must be at least 1s")
	}
	if s.total < 0 || s.count < 0 {
		return nil, errors.New("--total and --count must not be negative")
	}

	f := models.NewTimelapseForm()
	f.SetInterval(models.FromSeconds(int(s.interval / time.Second)))
	if countSet {
		f.SetImageCount(s.count)
	} else {
		f.SetTotal(models.FromSeconds(int(s.total / time.Second)))
	}
	return f, nil
}

func newPlanCmd(opts *options) *cobra.Command {
	s := &schedule{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the image count and run length for a schedule",
		Example: `  # Frames captured every 10 seconds for an hour
  bair-timelapse plan --interval 10s --total 1h

  # How long 500 frames at 30 second intervals take
  bair-timelapse plan --interval 30s --count 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := s.form(cmd.Flags().Changed("count"))
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), f, opts.cfg.Encoder.FrameRate)
			return nil
		},
	}
	s.addFlags(cmd)

	return cmd
}

func printPlan(w io.Writer, f *models.TimelapseForm, frameRate int) {
	fmt.Fprintf(w, "interval    %s\n", f.Interval)
	fmt.Fprintf(w, "total time  %s\n", f.Total)
	fmt.Fprintf(w, "images      %d\n", f.Count)
	if f.Count > 0 && frameRate > 0 {
		fmt.Fprintf(w, "video       %.1fs at %d fps\n", float64(f.Count)/float64(frameRate), frameRate)
	}
}
