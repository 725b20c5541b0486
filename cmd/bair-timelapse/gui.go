package main

import (
	"github.com/spf13/cobra"

	"bair-timelapse/internal/app"
)

func newGUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the control panel window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts)
		},
	}
}

func runGUI(opts *options) error {
	lifecycle, err := app.NewLifecycle(opts.cfg, opts.log)
	if err != nil {
		return err
	}

	return app.NewApplication(lifecycle, version).Run()
}
