package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forPelevin/vodclip/internal/config"
	"github.com/forPelevin/vodclip/internal/logging"
	"github.com/forPelevin/vodclip/internal/pipeline"
	"github.com/spf13/cobra"
)

// runTimeout bounds a whole invocation; each tool call has its own timeout too.
const runTimeout = 3 * time.Hour

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newService(cmd *cobra.Command) (*pipeline.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	svc, err := pipeline.New(pipeline.Config{App: cfg, Logger: logging.WithComponent("vodclip")})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return svc, nil
}

// runContext is cancelled on SIGINT/SIGTERM so running tools are killed and
// pending uploads skipped.
func runContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
