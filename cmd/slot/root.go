package slot

import (
	"github.com/spf13/cobra"
)

var (
	// SlotCommands represents the slot command group
	SlotCommands = &cobra.Command{
		Use:   "slot",
		Short: "Raw access to the slots of the configured store",
		Long: `Raw access to the slots of the configured store.

Keys are given as hex (0x...) or as decimal numbers and are left-padded
to 32 bytes. Values are printed as hex.`,
	}
)

func init() {
	SlotCommands.AddCommand(getCmd)
	SlotCommands.AddCommand(setCmd)
	SlotCommands.AddCommand(clearCmd)
	SlotCommands.AddCommand(hasCmd)
	SlotCommands.AddCommand(infoCmd)

	setCmd.Flags().Bool("hex", false, "Interpret the value as hex instead of text")
}
