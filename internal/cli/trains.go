package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/railway/internal/booking"
	"github.com/ahinestrog/railway/internal/station"
)

func NewAddTrainCmd(app *App) *cobra.Command {
	var req booking.AddTrainRequest
	cmd := &cobra.Command{
		Use:   "add-train",
		Short: "Add a train to every station database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.svc.AddTrain(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Train '%s' added successfully (id %d).\n", res.Train.Name, res.Train.ID)
			if !res.Aligned {
				fmt.Fprintln(out, "Warning: stations assigned different ids to this train:")
				for _, id := range res.IDs {
					fmt.Fprintf(out, "  %s: %d\n", id.Store, id.ID)
				}
			}
			return nil
		},
		PreRunE: app.preRun,
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "Train name")
	f.StringVar(&req.Source, "source", "", "Source station")
	f.StringVar(&req.Destination, "destination", "", "Destination station")
	f.IntVar(&req.Seats.SL, "sl", 0, "SL seats")
	f.IntVar(&req.Seats.AC3A, "ac3a", 0, "AC 3A seats")
	f.IntVar(&req.Seats.AC2A, "ac2a", 0, "AC 2A seats")
	f.IntVar(&req.Seats.H1, "h1", 0, "H1 seats")
	f.IntVar(&req.Seats.General, "general", 0, "General seats")

	return cmd
}

func NewTrainsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trains",
		Short: "List trains across all stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trains, err := app.svc.ListTrains(cmd.Context())
			if err != nil {
				return err
			}
			return writeTrains(cmd.OutOrStdout(), trains)
		},
		PreRunE: app.preRun,
	}
}

func NewTrainCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "train <id>",
		Short: "Show one train",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("train id %q: %w", args[0], err)
			}
			t, err := app.svc.GetTrain(cmd.Context(), id)
			if errors.Is(err, station.ErrNotFound) {
				return fmt.Errorf("train %d not found", id)
			}
			if err != nil {
				return err
			}
			return writeTrains(cmd.OutOrStdout(), []station.Train{t})
		},
		PreRunE: app.preRun,
	}
}

func writeTrains(w io.Writer, trains []station.Train) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tSource\tDestination\tSL\tAC3A\tAC2A\tH1\tGeneral")
	for _, t := range trains {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Name, t.Source, t.Destination,
			humanize.Comma(int64(t.Seats.SL)),
			humanize.Comma(int64(t.Seats.AC3A)),
			humanize.Comma(int64(t.Seats.AC2A)),
			humanize.Comma(int64(t.Seats.H1)),
			humanize.Comma(int64(t.Seats.General)))
	}
	return tw.Flush()
}
