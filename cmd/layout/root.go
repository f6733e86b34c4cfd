package layout

import (
	"os"

	"github.com/ValentinKolb/kvlayout/cmd/util"
	"github.com/ValentinKolb/kvlayout/lib/contract"
	"github.com/ValentinKolb/kvlayout/lib/metadata"
	"github.com/spf13/cobra"
)

var (
	// LayoutCmd prints the layout document of the sample ledger
	LayoutCmd = &cobra.Command{
		Use:   "layout",
		Short: "Print the storage layout of the sample ledger",
		Long: `Print the portable storage layout document of the sample ledger as JSON.

The document lists the slot of every stored value together with a
registry of all referenced types. Generating it never touches a store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootArg, _ := cmd.Flags().GetString("root")
			root, err := util.ParseKey(rootArg)
			if err != nil {
				return err
			}
			doc, err := metadata.Generate(contract.NewLedger(), root)
			if err != nil {
				return err
			}
			return doc.WriteJSON(os.Stdout)
		},
	}
)

func init() {
	LayoutCmd.Flags().String("root", contract.DefaultRoot.String(), util.WrapString("Root key of the ledger"))
}
