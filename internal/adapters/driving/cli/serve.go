package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the memory API over HTTP:

  POST /v1/ingest      import export files
  POST /v1/retrieve    search memories
  POST /v1/sessions    save a live session
  GET  /healthz        liveness
  GET  /metrics        Prometheus metrics

The address defaults to server.addr from the configuration. In-flight
requests are drained for server.shutdown_timeout on interrupt.`,
	Annotations: backend(),
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return notConfigured("search")
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Retrieval: retrievalService,
		Ingest:    ingestService,
		Session:   sessionService,
		Gatherer:  gatherer,
	})
	if err != nil {
		return err
	}

	addr := serverSettings.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	cmd.Printf("HTTP API listening on %s\n", addr)
	if err := server.Run(cmd.Context(), addr, serverSettings.ShutdownTimeout); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}
