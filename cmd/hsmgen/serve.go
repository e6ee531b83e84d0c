package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	httpAdapter "github.com/aretw0/hsmgen/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP extraction server",
	Long:  `Exposes the extractor as a JSON API over HTTP (POST /parse, POST /graph, GET /events).`,
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()

		port := e.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		opts := []httpAdapter.ServerOption{
			httpAdapter.WithGeneratorOptions(e.opts...),
			httpAdapter.WithLogger(e.logger),
		}
		if e.cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			opts = append(opts, httpAdapter.WithMetrics(reg))
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: httpAdapter.NewHandler(opts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting hsmgen Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				fmt.Printf("Server error: %v\n", err)
				os.Exit(1)
			}

		case <-cmd.Context().Done():
			fmt.Println("\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("hsmgen Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
}
