package cli

import (
	"github.com/spf13/cobra"
)

func NewServeCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			return a.Serve()
		},
	}
}
