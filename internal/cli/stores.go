package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

func NewInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Validate the station databases, rebuilding any with a wrong schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the work happens in setup; this only confirms it
			n := len(app.svc.Stores())
			fmt.Fprintf(cmd.OutOrStdout(), "%s ready in %s\n", english.Plural(n, "station database", ""), app.cfg.DataDir)
			return nil
		},
		PreRunE: app.preRun,
	}
}

func NewStoresCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "Show the station databases in scan order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tStation\tPath\tSize")
			for i, st := range app.svc.Stores() {
				size := "-"
				if n, err := st.Stat(); err == nil {
					size = humanize.Bytes(uint64(n))
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, st.Name(), st.Path(), size)
			}
			return tw.Flush()
		},
		PreRunE: app.preRun,
	}
}

func NewAuditCmd(app *App) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare the train tables of all stations and report drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := app.svc.Audit(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Station\tTrains\tTickets")
			for _, s := range rep.Stores {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Store, s.Trains, s.Tickets)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if rep.Consistent() {
				fmt.Fprintln(out, "All stations agree.")
				return nil
			}
			for _, m := range rep.Missing {
				fmt.Fprintf(out, "train %d missing from %v\n", m.TrainID, m.Absent)
			}
			for _, d := range rep.Divergent {
				fmt.Fprintf(out, "train %d differs from %s in %v\n", d.TrainID, d.Reference, d.Stores)
			}
			if strict {
				return errors.New("stations have drifted apart")
			}
			return nil
		},
		PreRunE: app.preRun,
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when drift is found")
	return cmd
}
