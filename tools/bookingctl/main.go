// Command bookingctl is an operator CLI for the booking service. It lists and
// triages appointment requests, checks service health and follows the
// notification events the service publishes.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type options struct {
	addr     string
	grpcAddr string
	timeout  time.Duration
}

func main() {
	config.LoadDotEnv()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Manage salon appointment requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.addr, "addr", config.String("BOOKING_ADDR", "http://localhost:8083"), "booking service HTTP base url")
	root.PersistentFlags().StringVar(&opts.grpcAddr, "grpc-addr", config.String("BOOKING_GRPC_ADDR", "localhost:9083"), "booking service gRPC address")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(
		newListCmd(opts),
		newTransitionCmd(opts, "confirm", "Confirm a pending appointment"),
		newTransitionCmd(opts, "reject", "Reject a pending appointment"),
		newStatsCmd(opts),
		newBookCmd(opts),
		newHealthCmd(opts),
		newEventsCmd(),
	)
	return root
}

func newListCmd(opts *options) *cobra.Command {
	var status, date, ref string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Long: `List appointments, optionally filtered.

Examples:
  bookingctl list
  bookingctl list --status pending --date week
  bookingctl list --date today --ref 2024-07-17`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := newClient(opts.addr, opts.timeout).list(cmd.Context(), status, date, ref)
			if err != nil {
				return err
			}
			if res.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No appointments found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tDATE\tTIME\tCLIENT\tPHONE\tSERVICE")
			for _, a := range res.Appointments {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Display.Label, a.Date, a.Time, a.ClientName, a.ClientPhone, a.Service.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter: all, pending, confirmed, rejected")
	cmd.Flags().StringVar(&date, "date", "", "date filter: all, today, tomorrow, week")
	cmd.Flags().StringVar(&ref, "ref", "", "reference date (YYYY-MM-DD), defaults to today on the server")
	return cmd
}

func newTransitionCmd(opts *options, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient(opts.addr, opts.timeout).transition(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n%s\n", res.Appointment.ID, res.Message.Title, res.Message.Description)
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show appointment counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newClient(opts.addr, opts.timeout).stats(cmd.Context(), ref)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "reference date\t%s\n", s.Ref)
			fmt.Fprintf(tw, "total\t%d\n", s.Total)
			fmt.Fprintf(tw, "pending\t%d\n", s.Pending)
			fmt.Fprintf(tw, "confirmed\t%d\n", s.Confirmed)
			fmt.Fprintf(tw, "rejected\t%d\n", s.Rejected)
			fmt.Fprintf(tw, "confirmed today\t%d\n", s.TodayConfirmed)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "reference date (YYYY-MM-DD)")
	return cmd
}

func newBookCmd(opts *options) *cobra.Command {
	var (
		s   submission
		key string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Submit a booking request",
		Long: `Submit a booking request on behalf of a client.

Example:
  bookingctl book --name "Emma van der Berg" --phone "06 12345678" \
    --service 1 --date 2024-07-17 --time 10:30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := newClient(opts.addr, opts.timeout).book(cmd.Context(), s, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n", res.Appointment.ID, res.Appointment.Status, res.Message.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.ClientName, "name", "", "client name")
	f.StringVar(&s.ClientPhone, "phone", "", "client phone number")
	f.StringVar(&s.ClientEmail, "email", "", "client email address")
	f.StringVar(&s.ServiceID, "service", "", "service id")
	f.StringVar(&s.Date, "date", "", "appointment date (YYYY-MM-DD)")
	f.StringVar(&s.Time, "time", "", "appointment time (HH:MM)")
	f.StringVar(&s.Notes, "notes", "", "notes for the provider")
	f.StringVar(&key, "idempotency-key", "", "Idempotency-Key header value")
	for _, name := range []string{"name", "phone", "service", "date", "time"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	var service string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check booking service health over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := grpcx.Dial(opts.grpcAddr, grpcx.DialOptions{})
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return fmt.Errorf("health check %s: %w", opts.grpcAddr, err)
			}
			status := strings.ToLower(resp.GetStatus().String())
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service is %s", status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "salonbook.booking.v1.BookingService", "health service name (empty for overall)")
	return cmd
}
