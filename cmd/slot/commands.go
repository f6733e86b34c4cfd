package slot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/kvlayout/cmd/util"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"github.com/spf13/cobra"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value of a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := util.ParseKey(args[0])
			if err != nil {
				return err
			}
			return util.WithStore(func(s store.Store) error {
				value, ok, err := s.Get(k)
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%v, value=0x%s\n", k, ok, hex.EncodeToString(value))
				return nil
			})
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value of a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := util.ParseKey(args[0])
			if err != nil {
				return err
			}
			value := []byte(args[1])
			if asHex, _ := cmd.Flags().GetBool("hex"); asHex {
				if value, err = hex.DecodeString(strings.TrimPrefix(args[1], "0x")); err != nil {
					return fmt.Errorf("value is not valid hex: %w", err)
				}
			}
			return util.WithStore(func(s store.Store) error {
				if err := s.Set(k, value); err != nil {
					return err
				}
				fmt.Println("set successfully")
				return nil
			})
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear [key]",
		Short: "Clears a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := util.ParseKey(args[0])
			if err != nil {
				return err
			}
			return util.WithStore(func(s store.Store) error {
				if err := s.Clear(k); err != nil {
					return err
				}
				fmt.Println("clear successfully")
				return nil
			})
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a slot holds a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := util.ParseKey(args[0])
			if err != nil {
				return err
			}
			return util.WithStore(func(s store.Store) error {
				ok, err := s.Has(k)
				if err != nil {
					return err
				}
				fmt.Printf("key=%s, found=%v\n", k, ok)
				return nil
			})
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints statistics of the slot database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithStore(func(s store.Store) error {
				info, err := s.GetDBInfo()
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			})
		},
	}
)
