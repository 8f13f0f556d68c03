package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjtimmons/seqcmp/internal/history"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/jjtimmons/seqcmp/internal/server"
	"github.com/jjtimmons/seqcmp/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// serveCmd is for comparing sequences over HTTP
var serveCmd = &cobra.Command{
	Use:                        "serve [fasta]",
	Short:                      "Serve an HTTP API for comparing the sequences in a FASTA file",
	Args:                       cobra.ExactArgs(1),
	RunE:                       serveExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  seqcmp serve globins.fa --addr :8080 --watch",
	Long: `Serve an HTTP API for selecting and comparing the sequences in a FASTA file.

  GET    /v1/records                 loaded records
  POST   /v1/records                 replace the records with a FASTA body
  GET    /v1/selection               selected primaries and tests
  PUT    /v1/selection               {"primary": [...], "test": [...]}
  POST   /v1/compare                 compare the selection
  POST   /v1/align                   {"primary": {"sequence": ...}, "test": {...}}
  GET    /v1/history                 comparisons since the records were loaded
  GET    /v1/history/:id             one comparison
  PUT    /v1/history/:id/notes       {"notes": ...}
  GET    /v1/history/:id/export      the comparison's report, as a file
  DELETE /v1/history/:id             delete a comparison
  GET    /metrics                    Prometheus metrics

The server's history lasts as long as its records: loading new records, or
a reload with --watch, clears it.`,
}

func serveExec(cmd *cobra.Command, args []string) error {
	c, logger, err := setup()
	if err != nil {
		return err
	}
	path := args[0]

	hist, err := history.Open(history.Options{InMemory: true, Logger: logger})
	if err != nil {
		return err
	}
	defer hist.Close()

	sess := session.New(report.Builder{Workers: c.Workers}, hist)
	if err := server.Reload(sess, path); err != nil {
		return err
	}
	logger.Info("loaded records", "source", path, "records", len(sess.Records()))

	if c.Server.Trace {
		tp, err := server.NewTracerProvider(os.Stdout)
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(server.Options{
		Session:    sess,
		Logger:     logger,
		ExportFile: c.Export.HistoryFile,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, c.Server.Addr)
	})
	if c.Server.Watch && path != "-" {
		g.Go(func() error {
			return server.Watch(ctx, path, logger, func() error {
				return server.Reload(sess, path)
			})
		})
	}
	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().Bool("watch", false, "reload the FASTA file when it changes")
	serveCmd.Flags().Bool("trace", false, "write trace spans to stdout")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.watch", serveCmd.Flags().Lookup("watch"))
	viper.BindPFlag("server.trace", serveCmd.Flags().Lookup("trace"))

	RootCmd.AddCommand(serveCmd)
}
