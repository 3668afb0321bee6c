package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/scoring"
	"github.com/spf13/cobra"
)

func newBanksCmd() *cobra.Command {
	var dir string

	banksCmd := &cobra.Command{
		Use:   "banks",
		Short: "Inspect question banks",
	}
	banksCmd.PersistentFlags().StringVar(&dir, "dir", "", "load banks from this directory instead of the embedded set")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := questionbank.NewRegistry(questionbank.Options{Dir: dir})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tVERSION\tQUESTIONS\tCATEGORIES\tRETAKE")
			for _, t := range reg.Types() {
				b, _ := reg.Get(t)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", b.Type(), b.Version(), b.Len(), len(b.Categories()), b.RetakeAfter())
			}
			return w.Flush()
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load every bank and check that each category can be scored",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := questionbank.NewRegistry(questionbank.Options{Dir: dir})
			if err != nil {
				return err
			}
			var problems int
			for _, t := range reg.Types() {
				b, _ := reg.Get(t)
				for _, cs := range scoring.Score(b, nil).Sorted() {
					if !cs.Scorable {
						problems++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: category %s has no questions\n", t, cs.Category)
					}
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d unscorable categories", problems)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d banks OK\n", len(reg.Types()))
			return nil
		},
	}

	banksCmd.AddCommand(listCmd, validateCmd)
	return banksCmd
}
