package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"cleanorder-api/internal/client/orders"
	"cleanorder-api/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	apiURL   string
	email    string
	password string
	timeout  time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	// .env is optional, same as the server
	_ = godotenv.Load()

	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "ordersctl",
		Short:        "Work with CleanOrder service orders from the terminal",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("ORDERS_API_URL", "http://localhost:3000"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.email, "email", os.Getenv("ORDERS_EMAIL"), "login email")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests")
	opts.password = os.Getenv("ORDERS_PASSWORD")

	cmd.AddCommand(newListCmd(opts), newAdvanceCmd(opts))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// session logs in and returns a ready client
func (o *rootOptions) session(ctx context.Context) (*orders.Client, *zap.Logger, error) {
	if o.email == "" || o.password == "" {
		return nil, nil, errors.New("ORDERS_EMAIL and ORDERS_PASSWORD must be set")
	}

	level := "error"
	if o.verbose {
		level = "debug"
	}
	log, err := logger.New(level, true)
	if err != nil {
		return nil, nil, err
	}

	client, err := orders.New(orders.Options{BaseURL: o.apiURL, Logger: log})
	if err != nil {
		return nil, nil, err
	}
	if err := client.Login(ctx, o.email, o.password); err != nil {
		return nil, nil, explain(fmt.Errorf("login: %w", err))
	}
	return client, log, nil
}

// explain adds a hint to errors the user can act on
func explain(err error) error {
	if orders.IsUnauthorized(err) {
		return fmt.Errorf("%w (check ORDERS_EMAIL and ORDERS_PASSWORD)", err)
	}
	return err
}

func newListCmd(root *rootOptions) *cobra.Command {
	var query, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := orders.ParseStatus(status)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			client, log, err := root.session(ctx)
			if err != nil {
				return err
			}
			board := orders.NewBoard(client, notifier(cmd.ErrOrStderr()), log)

			if err := board.Load(ctx); err != nil {
				return explain(err)
			}
			board.SetQuery(query)
			board.SetStatus(filter)

			return printOrders(cmd.OutOrStdout(), board.Visible())
		},
	}

	cmd.Flags().StringVar(&query, "q", "", "search code, client, region and address")
	cmd.Flags().StringVar(&status, "status", "", "pending, progress or done")
	return cmd
}

func newAdvanceCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <order-id>",
		Short: "Move an order to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			client, log, err := root.session(ctx)
			if err != nil {
				return err
			}
			board := orders.NewBoard(client, notifier(cmd.OutOrStdout()), log)

			if err := board.Load(ctx); err != nil {
				return explain(err)
			}

			before := statusOf(board.Orders(), uint(id))
			if err := board.Advance(ctx, uint(id)); err != nil {
				return explain(err)
			}
			if before == orders.StatusDone {
				fmt.Fprintf(cmd.OutOrStdout(), "order %d is already %s\n", id, before.Label())
			}
			return nil
		},
	}
}

func statusOf(list []orders.Order, id uint) orders.Status {
	for _, o := range list {
		if o.ID == id {
			return o.Status
		}
	}
	return ""
}

func notifier(w io.Writer) orders.Notifier {
	return func(n orders.Notification) {
		fmt.Fprintln(w, n.Message)
	}
}

func printOrders(w io.Writer, list []orders.Order) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFOLIO\tESTADO\tCLIENTE\tREGIÓN\tDIRECCIÓN\tHORAS\tAGENDADA")
	for _, o := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			o.ID, o.Code, o.Status.Label(), o.ClientName, o.CompanyName, o.Address, o.Hours, o.ScheduledAt)
	}
	return tw.Flush()
}
