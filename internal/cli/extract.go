package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/vodclip/internal/types"
	"github.com/forPelevin/vodclip/internal/usecase"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Cut the given time ranges into clips and upload them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clips, err := clipSpecs(cmd)
			if err != nil {
				return err
			}
			opts := extractOptions(cmd, "quality")
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := runContext()
			defer cancel()

			res, err := svc.ExtractClips(ctx, args[0], clips, opts)
			if perr := printJSON(cmd, res); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}
			return failedClipsError(res)
		},
	}
	cmd.Flags().StringArray("clip", nil, "Clip as start,end[,name]; times are SS, MM:SS or HH:MM:SS (repeatable)")
	cmd.Flags().String("clips-file", "", "JSON file with [{\"startTime\",\"endTime\",\"name\"}]")
	addExtractFlags(cmd, "quality")
	return cmd
}

func addExtractFlags(cmd *cobra.Command, qualityFlag string) {
	def := usecase.DefaultExtractOptions()
	cmd.Flags().String(qualityFlag, def.Quality, "Download quality: best, 1080, 720, 480, 360")
	cmd.Flags().Bool("sequential", false, "Upload clips one at a time")
}

func extractOptions(cmd *cobra.Command, qualityFlag string) usecase.ExtractOptions {
	opts := usecase.DefaultExtractOptions()
	opts.Quality, _ = cmd.Flags().GetString(qualityFlag)
	sequential, _ := cmd.Flags().GetBool("sequential")
	opts.ParallelUploads = !sequential
	return opts
}

func clipSpecs(cmd *cobra.Command) ([]types.ClipExtractionSpec, error) {
	var specs []types.ClipExtractionSpec
	if path, _ := cmd.Flags().GetString("clips-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &specs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	flags, _ := cmd.Flags().GetStringArray("clip")
	for _, f := range flags {
		s, err := parseClipFlag(f)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	if len(specs) == 0 {
		return nil, errors.New("at least one --clip or --clips-file is required")
	}
	return specs, nil
}

// parseClipFlag reads "start,end[,name]". Commas are used because times
// themselves contain colons.
func parseClipFlag(v string) (types.ClipExtractionSpec, error) {
	parts := strings.SplitN(v, ",", 3)
	if len(parts) < 2 {
		return types.ClipExtractionSpec{}, fmt.Errorf("invalid --clip %q: want start,end[,name]", v)
	}
	s := types.ClipExtractionSpec{
		StartTime: strings.TrimSpace(parts[0]),
		EndTime:   strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		s.Name = strings.TrimSpace(parts[2])
	}
	if s.StartTime == "" || s.EndTime == "" {
		return types.ClipExtractionSpec{}, fmt.Errorf("invalid --clip %q: start and end are required", v)
	}
	return s, nil
}

func failedClipsError(res types.ExtractClipsResult) error {
	if res.Failed == 0 {
		return nil
	}
	names := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		names = append(names, e.Name)
	}
	return fmt.Errorf("%d of %d clips failed: %s", res.Failed, res.Failed+res.Successful, strings.Join(names, ", "))
}
