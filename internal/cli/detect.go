package cli

import (
	"github.com/forPelevin/vodclip/internal/types"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <video>",
		Short: "Detect highlights using transcript and motion signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := detectOptions(cmd)
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := runContext()
			defer cancel()

			res, err := svc.DetectHighlights(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addDetectFlags(cmd, true)
	return cmd
}

func newQuickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick <video>",
		Short: "Transcript-only detection (no video download)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := detectOptions(cmd)
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := runContext()
			defer cancel()

			res, err := svc.QuickDetect(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addDetectFlags(cmd, false)
	return cmd
}

func addDetectFlags(cmd *cobra.Command, motion bool) {
	def := types.DefaultDetectOptions()
	cmd.Flags().Int("max-clips", def.MaxClips, "Maximum number of highlights")
	cmd.Flags().Float64("min-score", def.MinScore, "Minimum fused score")
	cmd.Flags().StringSlice("prefer", nil, "Boost clip types: aha_moment, explanation, build_moment, demo")
	if motion {
		cmd.Flags().String("analysis", def.AnalysisQuality, "Motion analysis quality: fast, standard, thorough")
		cmd.Flags().Bool("skip-motion", false, "Skip motion analysis")
	}
}

func detectOptions(cmd *cobra.Command) types.DetectOptions {
	opts := types.DefaultDetectOptions()
	opts.MaxClips, _ = cmd.Flags().GetInt("max-clips")
	opts.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	prefer, _ := cmd.Flags().GetStringSlice("prefer")
	for _, p := range prefer {
		opts.PreferredTypes = append(opts.PreferredTypes, types.ClipType(p))
	}
	if cmd.Flags().Lookup("analysis") != nil {
		opts.AnalysisQuality, _ = cmd.Flags().GetString("analysis")
		opts.SkipMotionAnalysis, _ = cmd.Flags().GetBool("skip-motion")
	}
	return opts
}
