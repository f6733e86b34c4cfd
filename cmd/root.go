package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/kvlayout/cmd/layout"
	"github.com/ValentinKolb/kvlayout/cmd/ledger"
	"github.com/ValentinKolb/kvlayout/cmd/slot"
	"github.com/ValentinKolb/kvlayout/cmd/util"
	"github.com/ValentinKolb/kvlayout/lib/common"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvl",
		Short: "storage layout toolkit for slot based key-value stores",
		Long: fmt.Sprintf(`kvl (v%s)

Maps structured values onto the 32-byte slots of a key-value store and
describes the resulting storage layout as a portable JSON document.

Configuration can be set via command line flags or environment variables.
The format of the environment variables is KVL_<flag> (e.g. KVL_DATA_DIR=/tmp/kvl)`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvl v%s\n", Version)
		},
	}
)

func init() {
	// run the root hook before the hooks of the command groups
	cobra.EnableTraverseRunHooks = true
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(slot.SlotCommands)
	RootCmd.AddCommand(layout.LayoutCmd)
	RootCmd.AddCommand(ledger.LedgerCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStoreFlags(RootCmd)
}

// setup binds the flags and configures logging
func setup(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	cfg, err := util.GetConfig()
	if err != nil {
		return err
	}
	return common.InitLoggers(cfg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
