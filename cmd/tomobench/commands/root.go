// Package commands implements the CLI commands for tomobench.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/tomobench/internal/app"
	"go.trai.ch/tomobench/internal/build"
	"go.trai.ch/tomobench/internal/core/domain"
)

// CLI represents the command line interface for tomobench.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Bench(ctx context.Context, global app.GlobalOptions, opts app.BenchOptions) (*domain.Report, error)
	ListCache(ctx context.Context, global app.GlobalOptions) ([]domain.CacheEntry, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tomobench",
		Short:         "Benchmark tomographic reconstruction engines",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: auto, pretty, or json")
	rootCmd.PersistentFlags().Bool("trace", false, "Log the duration of every traced phase")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBenchCmd(domain.BackendLprec, "Benchmark the log-polar engine"))
	rootCmd.AddCommand(c.newBenchCmd(domain.BackendAstra, "Benchmark the ASTRA engine"))
	rootCmd.AddCommand(c.newBenchCmd(domain.BackendTomopy, "Benchmark a tomopy engine"))
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func globalOptions(cmd *cobra.Command) app.GlobalOptions {
	configPath, _ := cmd.Flags().GetString("config")
	logFormat, _ := cmd.Flags().GetString("log-format")
	trace, _ := cmd.Flags().GetBool("trace")
	return app.GlobalOptions{
		ConfigPath: configPath,
		LogFormat:  logFormat,
		Trace:      trace,
	}
}
