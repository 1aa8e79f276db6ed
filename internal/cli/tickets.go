package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/railway/internal/booking"
	"github.com/ahinestrog/railway/internal/station"
)

func NewBookCmd(app *App) *cobra.Command {
	var (
		trainID    int64
		passengers string
		seats      int
		class      string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book tickets for one or more passengers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.svc.BookTickets(cmd.Context(), booking.BookingRequest{
				TrainID:        trainID,
				Passengers:     booking.ParsePassengers(passengers),
				SeatsPerPerson: seats,
				SeatClass:      class,
			})
			out := cmd.OutOrStdout()
			if res != nil && len(res.Tickets) > 0 {
				if werr := writeBooked(out, res.Tickets); werr != nil {
					return werr
				}
			}
			var ise *booking.InsufficientSeatsError
			if errors.As(err, &ise) && len(res.Tickets) > 0 {
				fmt.Fprintf(out, "%s above remain booked.\n", english.Plural(len(res.Tickets), "ticket", ""))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Ticket(s) booked successfully!")
			return nil
		},
		PreRunE: app.preRun,
	}

	f := cmd.Flags()
	f.Int64Var(&trainID, "train", 0, "Train id")
	f.StringVar(&passengers, "passengers", "", "Passenger name(s), comma separated")
	f.IntVar(&seats, "seats", 0, "Seats to book per passenger")
	f.StringVar(&class, "class", string(station.Sleeper), "Seat class: SL, AC 3A, AC 2A, H1 or General")

	return cmd
}

func NewTicketsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tickets",
		Short: "List tickets across all stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := app.svc.ListTickets(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Ticket ID\tTrain ID\tPassenger\tSeat Class\tSeats Booked")
			for _, t := range tickets {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\n", t.ID, t.TrainID, t.Passenger, t.SeatClass, t.SeatsBooked)
			}
			return tw.Flush()
		},
		PreRunE: app.preRun,
	}
}

func NewClassesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the seat classes accepted by book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Class\tCounter")
			for _, c := range station.SeatClasses {
				fmt.Fprintf(tw, "%s\t%s\n", c, c.Column())
			}
			return tw.Flush()
		},
	}
}

func writeBooked(w io.Writer, tickets []booking.BookedTicket) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Station\tTicket ID\tTrain ID\tPassenger\tSeat Class\tSeats Booked")
	for _, b := range tickets {
		t := b.Ticket
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\n", b.Store, t.ID, t.TrainID, t.Passenger, t.SeatClass, t.SeatsBooked)
	}
	return tw.Flush()
}
