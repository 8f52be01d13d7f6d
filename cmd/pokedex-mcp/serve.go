package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"pokedex-mcp/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		transport string
		addr      string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.HTTP.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a.svc.Start(ctx)

			switch transport {
			case "stdio":
				a.logger.Info("mcp stdio server starting")
				return server.NewMCPServer(a.tools).Run(ctx, &mcp.StdioTransport{})
			case "http":
				return serveHTTP(ctx, a)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address override")
	return cmd
}

func serveHTTP(ctx context.Context, a *app) error {
	hc := a.cfg.HTTP
	if hc.RequireAuth && hc.APIKey == "" {
		return errors.New("MCP_API_KEY is required when http.requireAuth is set")
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(hc, server.NewAPI(a.svc, a.favorites, a.tools), server.NewMCPServer(a.tools), a.logger)
	srv := server.NewHTTPServer(hc, router)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("mcp http server listening", "addr", hc.Address, "path", hc.MCPPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
