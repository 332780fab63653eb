package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/config"
	"github.com/mgpai22/subburn/internal/logging"
)

const skipConfigLoad = "skipConfigLoad"

// state shared by every subcommand of one invocation
type commandContext struct {
	verbose    bool
	configFlag string
	outputFlag string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	logger *logging.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configPath, c.configErr = config.Load(strings.TrimSpace(c.configFlag))
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *logging.Logger {
	if c.logger == nil {
		c.logger = logging.NewLogger(c.verbose)
	}
	return c.logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "subburn",
		Short: "Burn timed subtitles into videos",
		Long: `subburn renders word or phrase level subtitles onto video frames.

Short clips are rendered in memory; long videos are streamed through ffmpeg
from disk. Styles, animations and positions are shared by both paths and can
be set in a TOML config file or with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ctx.logger = logging.New(logging.Options{
				Verbose: ctx.verbose,
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
			})
			if ctx.configPath != "" {
				ctx.logger.Debugw("Loaded config", "path", ctx.configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().
		StringVarP(&ctx.outputFlag, "output", "o", "", "Output file path")

	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// Execute runs the command line until ctx is cancelled.
func Execute(ctx context.Context) error {
	err := newRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
