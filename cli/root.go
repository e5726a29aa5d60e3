// Package cli provides the drug-mentions command line: a one-shot report build,
// the HTTP service and version information.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/giygas/drug-mentions/config"
)

// Version is overridden at build time with -ldflags "-X github.com/giygas/drug-mentions/cli.Version=..."
var Version = "dev"

// Deps holds what the commands need from the outside world
type Deps struct {
	LoadConfig func() (*config.Config, error)
}

// DefaultDeps reads the configuration from the environment
func DefaultDeps() *Deps {
	return &Deps{LoadConfig: config.Load}
}

// NewRootCommand builds the command tree
func NewRootCommand(deps *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "drug-mentions",
		Short: "Index drug mentions in clinical trials and pubmed articles",
		Long: `drug-mentions matches a list of drugs against the titles of clinical trials
and pubmed articles and builds an index of the journals mentioning each drug.

From the index it answers two questions: which journal mentions the most
distinct drugs, and which drugs are reachable from a seed drug through
shared pubmed journals.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newReportCommand(deps))
	root.AddCommand(newServeCommand(deps))
	root.AddCommand(newVersionCommand())

	return root
}

// Execute runs the root command with the default dependencies
func Execute() error {
	return NewRootCommand(DefaultDeps()).Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("drug-mentions %s\n", Version)
		},
	}
}
