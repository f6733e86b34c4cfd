package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/kvlayout/cmd/util"
	"github.com/ValentinKolb/kvlayout/lib/contract"
	"github.com/ValentinKolb/kvlayout/lib/storage"
	"github.com/spf13/cobra"
)

// update loads the ledger, applies fn and saves it again
func update(fn func(l *contract.Ledger) error) error {
	return util.WithEnv(func(env *storage.Env) error {
		l, err := contract.Load(env, root)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		return l.Save(env, root)
	})
}

var (
	initCmd = &cobra.Command{
		Use:   "init [owner]",
		Short: "Creates a new ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithEnv(func(env *storage.Env) error {
				if _, err := contract.Create(env, root, args[0]); err != nil {
					return err
				}
				fmt.Printf("ledger created at %s\n", root)
				return nil
			})
		},
	}
	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Prints the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithEnv(func(env *storage.Env) error {
				l, err := contract.Load(env, root)
				if err != nil {
					return err
				}
				fmt.Print(describe(l))
				return nil
			})
		},
	}
	creditCmd = &cobra.Command{
		Use:   "credit [account] [amount]",
		Short: "Credits an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			return update(func(l *contract.Ledger) error {
				balance, err := l.Credit(args[0], amount)
				if err != nil {
					return err
				}
				fmt.Printf("account=%s, balance=%d\n", args[0], balance)
				return nil
			})
		},
	}
	flipCmd = &cobra.Command{
		Use:   "flip [reason]",
		Short: "Pauses an active ledger or resumes a paused one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := ""
			if len(args) == 1 {
				reason = args[0]
			}
			return update(func(l *contract.Ledger) error {
				if err := l.Flip(reason); err != nil {
					return err
				}
				fmt.Printf("ledger is %s\n", l.StatusName())
				return nil
			})
		},
	}
	closeCmd = &cobra.Command{
		Use:   "close [by]",
		Short: "Closes the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return update(func(l *contract.Ledger) error {
				return l.Close(uint64(time.Now().Unix()), args[0])
			})
		},
	}
	reserveCmd = &cobra.Command{
		Use:   "reserve [index] [amount]",
		Short: "Sets a reserve slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			return update(func(l *contract.Ledger) error {
				return l.SetReserve(i, amount)
			})
		},
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Prints the ledger config, falling back to the defaults if it was never written",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithEnv(func(env *storage.Env) error {
				cfg, err := contract.LoadConfig(env, root)
				if err != nil {
					return err
				}
				fmt.Printf("fee=%d bp, max balance=%d\n", cfg.FeeBasisPoints, cfg.MaxBalance)
				return nil
			})
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Removes the ledger and all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithEnv(func(env *storage.Env) error {
				l, err := contract.Load(env, root)
				if err != nil {
					return err
				}
				return l.Delete(env, root)
			})
		},
	}
)

// describe renders the ledger state
func describe(l *contract.Ledger) string {
	var sb strings.Builder
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-14s: %s\n", name, value))
	}

	addField("Owner", l.Owner.V)
	addField("Total Supply", strconv.FormatUint(l.TotalSupply.V, 10))
	switch l.Status.Discriminant() {
	case contract.StatusPaused:
		addField("Status", fmt.Sprintf("paused (%s)", l.PauseReason()))
	case contract.StatusClosed:
		at, by := l.ClosedBy()
		addField("Status", fmt.Sprintf("closed by %s at %s", by, time.Unix(int64(at), 0).UTC().Format(time.RFC3339)))
	default:
		addField("Status", l.StatusName())
	}
	addField("Reserves", fmt.Sprint(l.ReserveValues()))
	addField("Config", fmt.Sprintf("fee=%d bp, max balance=%d (%s)", l.Config.Inner.V.FeeBasisPoints, l.Config.Inner.V.MaxBalance, l.Config.Status()))

	sb.WriteString("  Balances:\n")
	for _, account := range l.Balances.Keys() {
		balance, _, err := l.Balances.Get(account)
		if err != nil {
			sb.WriteString(fmt.Sprintf("    %s: <%v>\n", account, err))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s: %d\n", account, balance))
	}
	return sb.String()
}
