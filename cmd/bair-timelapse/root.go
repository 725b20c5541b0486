package main

import (
	"github.com/spf13/cobra"

	"bair-timelapse/internal/config"
	"bair-timelapse/internal/logger"
)

// options carries what the persistent flags resolve to
type options struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bair-timelapse",
		Short: "Timelapse control panel for the Raspberry Pi camera",
		Long: `BAIR drives a Raspberry Pi camera through a timelapse run.

Pick an interval and a total time (or an image count), start the run and the
frames are written as <prefix>0000.jpg, <prefix>0001.jpg, ... When the run
completes the frames can be assembled into a 25 fps H.264 video.

Without a subcommand the control panel window is opened.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.cfg = cfg
			opts.log = logger.NewConsoleLogger(logger.ParseLevel(cfg.LogLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file (default $BAIR_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newGUICmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))

	return cmd
}
