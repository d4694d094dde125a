package cli

import (
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Detect highlights and extract them as clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dopts := detectOptions(cmd)
			eopts := extractOptions(cmd, "download-quality")
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := runContext()
			defer cancel()

			res, err := svc.DetectAndExtract(ctx, args[0], dopts, eopts)
			if perr := printJSON(cmd, res); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}
			return failedClipsError(res.Extraction)
		},
	}
	addDetectFlags(cmd, true)
	addExtractFlags(cmd, "download-quality")
	return cmd
}
