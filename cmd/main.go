package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/3rs4lg4d0/mailpulse/aggregator/redis"
	"github.com/3rs4lg4d0/mailpulse/config"
	mlpzrlg "github.com/3rs4lg4d0/mailpulse/logger/zerolog"
	"github.com/3rs4lg4d0/mailpulse/mailrec"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	redisAddr  string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mailpulse",
		Short: "Records sent mail counters and lists the top recipients",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address of the aggregator")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(recordCmd(), topCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func recordCmd() *cobra.Command {
	var (
		to       []string
		subject  string
		mailable string
		notif    bool
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one sent mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configFile)
			if err != nil {
				return err
			}
			logger := &mlpzrlg.Logger{Logger: GetLogger()}
			client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
			defer client.Close()

			data := map[string]any{}
			if mailable != "" {
				data[mailrec.DataKeyMailable] = mailable
			}
			if notif {
				data[mailrec.DataKeyNotification] = true
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			r := mailrec.New(settings, redis.New(client, ""), mailrec.WithLogger(logger))
			r.Record(ctx, mailrec.NewEventFromData(to, subject, data))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "Recipient addresses")
	cmd.Flags().StringVar(&subject, "subject", "", "Mail subject")
	cmd.Flags().StringVar(&mailable, "mailable", "", "Mailable class that produced the mail")
	cmd.Flags().BoolVar(&notif, "notification", false, "The mail was sent by the notification subsystem")
	return cmd
}

func topCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most sent mails",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configFile)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = settings.Limit
			}
			logger := &mlpzrlg.Logger{Logger: GetLogger()}
			client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			agg := redis.New(client, "")
			agg.SetLogger(logger)
			mails, err := mailrec.TopMails(ctx, agg, limit, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TO\tSUBJECT\tMAILABLE\tCOUNT")
			for _, m := range mails {
				mailable := "-"
				if m.Mailable != nil {
					mailable = *m.Mailable
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.To, m.Subject, mailable, m.Count)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows, defaults to the configured limit")
	return cmd
}

func GetLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
