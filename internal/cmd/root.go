package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/binstall/internal/config"
)

// NewRootCmd creates the root command. Running it with -i installs a binary.
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:   "binstall -i <term>",
		Short: "Install prebuilt binaries from GitHub releases",
		Long: `binstall searches GitHub for a repository, picks the release asset built for
this machine from its latest release, and installs the executable into your
local bin directory (~/.local/bin by default).`,
		Example: `  binstall -i ripgrep --name rg
  binstall candidates fd`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, cfg, log, version, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.query, "install", "i", "", "search term for the repository to install from")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "install into this directory instead of the default bin directory")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "executable name inside the archive and on disk (default: the search term)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "overwrite an existing executable without asking")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "do not use the release metadata cache")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "overall timeout in seconds (default: install.timeout_seconds)")
	_ = cmd.MarkFlagRequired("install")

	cmd.AddCommand(NewCandidatesCmd(cfg, log, version))
	cmd.AddCommand(NewDoctorCmd(cfg, log, version))
	cmd.AddCommand(NewCompletionCmd(log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
