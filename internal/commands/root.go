package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tallybooks/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{lookupEnv: os.LookupEnv}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Double-entry bookkeeping for small businesses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.repo, "repo", ".", "books directory")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")
	flags.StringVar(&a.actor, "actor", defaultActor(), "name recorded in the audit log")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAccountsCommand(a),
		newJournalCommand(a),
		newReportCommand(a),
		newLedgerCommand(a),
		newAuditCommand(a),
		newDBCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "tally"
}
