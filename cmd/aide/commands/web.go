// ABOUTME: Web command runs the HTTP channel
// ABOUTME: Serves chat, brief, knowledge base, reminder, and OAuth routes
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/aide/internal/channels/web"
)

var webAddr string

// NewWebCmd creates the web command
func NewWebCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the HTTP channel",
		Long: `Run the HTTP channel.

Serves POST /chat, GET /brief, GET and PUT /kb, the reminders routes,
and the Google OAuth link flow.

Examples:
  aide web
  aide web --addr :9090`,
		RunE: runWeb,
	}

	cmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (default: AIDE_LISTEN_ADDR)")

	return cmd
}

func runWeb(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.requireAgent()
	if err != nil {
		return err
	}

	addr := webAddr
	if addr == "" {
		addr = a.cfg.ListenAddr
	}

	server := web.NewServer(orch, a.briefs, a.kb, a.auth, a.auth)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("web channel listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutting down web channel...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web channel: %w", err)
	}
}
