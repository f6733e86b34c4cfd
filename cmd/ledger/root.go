package ledger

import (
	"github.com/ValentinKolb/kvlayout/cmd/util"
	"github.com/ValentinKolb/kvlayout/lib/contract"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/spf13/cobra"
)

var (
	root key.Key

	// LedgerCommands represents the ledger command group
	LedgerCommands = &cobra.Command{
		Use:               "ledger",
		Short:             "Operate the sample ledger stored in the configured store",
		PersistentPreRunE: parseRoot,
	}
)

func init() {
	LedgerCommands.PersistentFlags().String("root", contract.DefaultRoot.String(), util.WrapString("Root key of the ledger"))

	LedgerCommands.AddCommand(initCmd)
	LedgerCommands.AddCommand(showCmd)
	LedgerCommands.AddCommand(creditCmd)
	LedgerCommands.AddCommand(flipCmd)
	LedgerCommands.AddCommand(closeCmd)
	LedgerCommands.AddCommand(reserveCmd)
	LedgerCommands.AddCommand(configCmd)
	LedgerCommands.AddCommand(deleteCmd)
}

// parseRoot reads the root flag
func parseRoot(cmd *cobra.Command, _ []string) error {
	rootArg, err := cmd.Flags().GetString("root")
	if err != nil {
		return err
	}
	root, err = util.ParseKey(rootArg)
	return err
}
