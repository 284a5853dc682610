package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/seed"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/service/passengers"
)

type globalOptions struct {
	Config string `short:"c" long:"config" env:"CONFIG_PATH" default:"config.yaml" description:"path to config file"`
}

type cli struct {
	ctx      context.Context
	out      io.Writer
	opts     globalOptions
	storage  *bootstrap.Storage
	services *bootstrap.Services
}

func newCLI(ctx context.Context, out io.Writer) *cli {
	return &cli{ctx: ctx, out: out}
}

func (c *cli) parser() *flags.Parser {
	p := flags.NewParser(&c.opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		if err := c.open(); err != nil {
			return err
		}
		return cmd.Execute(args)
	}

	add := func(name, short string, data flags.Commander) {
		if _, err := p.AddCommand(name, short, short, data); err != nil {
			panic(err)
		}
	}
	add("flights", "List flights", &flightsCommand{cli: c})
	add("add-flight", "Create a flight", &addFlightCommand{cli: c})
	add("add-passenger", "Create a passenger", &addPassengerCommand{cli: c})
	add("book", "Book a seat on a flight", &bookCommand{cli: c})
	add("cancel", "Cancel a reservation", &cancelCommand{cli: c})
	add("reservations", "List a passenger's reservations", &reservationsCommand{cli: c})
	add("seed", "Load demo flights and passengers", &seedCommand{cli: c})
	add("audit", "Reconcile seat counts against reservations", &auditCommand{cli: c})
	return p
}

// open builds storage and services on first use.
func (c *cli) open() error {
	if c.services != nil {
		return nil
	}
	cfg, err := config.LoadConfig(c.opts.Config)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level); err != nil {
		return err
	}
	storage, err := bootstrap.NewStorage(c.ctx, cfg.Database)
	if err != nil {
		return err
	}
	c.storage = storage
	c.services = bootstrap.NewServices(c.ctx, cfg, storage)
	return nil
}

func (c *cli) close() {
	if c.services != nil {
		c.services.Close()
	}
	if c.storage != nil {
		c.storage.Close()
	}
}

type flightsCommand struct {
	cli *cli
}

func (cmd *flightsCommand) Execute([]string) error {
	c := cmd.cli
	fmt.Fprintf(c.out, "%-6s %-10s %-15s %-15s %s\n", "ID", "NUMBER", "DEPARTURE", "DESTINATION", "SEATS")
	for f, err := range c.services.Flights.List(c.ctx) {
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%-6d %-10s %-15s %-15s %d/%d\n", f.ID, f.Number, f.Departure, f.Destination, f.AvailableSeats, f.TotalSeats)
	}
	return nil
}

type addFlightCommand struct {
	cli         *cli
	Number      string `long:"number" required:"true" description:"flight number"`
	Departure   string `long:"departure" required:"true"`
	Destination string `long:"destination" required:"true"`
	Seats       int    `long:"seats" required:"true" description:"total seats"`
}

func (cmd *addFlightCommand) Execute([]string) error {
	f, err := cmd.cli.services.Flights.Create(cmd.cli.ctx, flights.CreateFlightInput{
		Number:      cmd.Number,
		Departure:   cmd.Departure,
		Destination: cmd.Destination,
		TotalSeats:  cmd.Seats,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.out, "flight %s created with id %d\n", f.Number, f.ID)
	return nil
}

type addPassengerCommand struct {
	cli      *cli
	First    string `long:"first" required:"true" description:"first name"`
	Last     string `long:"last" required:"true" description:"last name"`
	Passport string `long:"passport" required:"true" description:"passport number"`
}

func (cmd *addPassengerCommand) Execute([]string) error {
	p, err := cmd.cli.services.Passengers.Create(cmd.cli.ctx, passengers.CreatePassengerInput{
		FirstName:      cmd.First,
		LastName:       cmd.Last,
		PassportNumber: cmd.Passport,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.out, "passenger registered with id %d\n", p.ID)
	return nil
}

type bookCommand struct {
	cli       *cli
	Passenger int64 `short:"p" long:"passenger" required:"true" description:"passenger id"`
	Flight    int64 `short:"f" long:"flight" required:"true" description:"flight id"`
}

func (cmd *bookCommand) Execute([]string) error {
	r, err := cmd.cli.services.Engine.BookSeat(cmd.cli.ctx, cmd.Passenger, cmd.Flight)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.out, "reservation %d confirmed\n", r.ID)
	return nil
}

type cancelCommand struct {
	cli         *cli
	Reservation int64 `short:"r" long:"reservation" required:"true" description:"reservation id"`
}

func (cmd *cancelCommand) Execute([]string) error {
	if err := cmd.cli.services.Engine.CancelReservation(cmd.cli.ctx, cmd.Reservation); err != nil {
		return err
	}
	fmt.Fprintf(cmd.cli.out, "reservation %d cancelled\n", cmd.Reservation)
	return nil
}

type reservationsCommand struct {
	cli       *cli
	Passenger int64 `short:"p" long:"passenger" required:"true" description:"passenger id"`
}

func (cmd *reservationsCommand) Execute([]string) error {
	c := cmd.cli
	var summaries []domain.ReservationSummary
	for s, err := range c.services.Passengers.ListReservations(c.ctx, cmd.Passenger) {
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
	}
	if len(summaries) == 0 {
		fmt.Fprintf(c.out, "no reservations for passenger %d\n", cmd.Passenger)
		return nil
	}

	lines := lo.Map(summaries, func(s domain.ReservationSummary, _ int) string {
		return fmt.Sprintf("%-6d %-10s %s -> %s", s.ReservationID, s.FlightNumber, s.Departure, s.Destination)
	})
	for _, line := range lines {
		fmt.Fprintln(c.out, line)
	}
	return nil
}

type seedCommand struct {
	cli *cli
}

func (cmd *seedCommand) Execute([]string) error {
	s := cmd.cli.services
	if err := seed.NewSeeder(s.Flights, s.Passengers, s.Engine).Run(cmd.cli.ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.cli.out, "seed data loaded")
	return nil
}

type auditCommand struct {
	cli *cli
}

func (cmd *auditCommand) Execute([]string) error {
	drifted, err := cmd.cli.services.Audit.Run(cmd.cli.ctx)
	if err != nil {
		return err
	}
	if len(drifted) == 0 {
		fmt.Fprintln(cmd.cli.out, "inventory consistent")
		return nil
	}
	for _, a := range drifted {
		fmt.Fprintf(cmd.cli.out, "flight %s: total %d available %d reservations %d (drift %d)\n",
			a.Number, a.TotalSeats, a.AvailableSeats, a.Reservations, a.Drift())
	}
	return fmt.Errorf("%d flights out of balance", len(drifted))
}
