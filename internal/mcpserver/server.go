// Package mcpserver exposes the answer pipeline as Model Context Protocol
// tools and run history as resources.
package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-cli/internal/pipeline"
	"github.com/sells-group/answer-cli/internal/store"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for answer-cli.
type Server struct {
	svc    *pipeline.Service
	store  store.Store
	server *mcp.Server
}

// New creates an MCP server. A nil store leaves the run resources
// unregistered.
func New(svc *pipeline.Service, st store.Store) (*Server, error) {
	if svc == nil {
		return nil, eris.New("mcpserver: service is required")
	}

	s := &Server{
		svc:   svc,
		store: st,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "answer-cli",
			Version: Version,
		}, nil),
	}

	s.registerTools()
	if st != nil {
		s.registerResources()
	}
	return s, nil
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	zap.L().Info("mcpserver: serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is canceled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	zap.L().Info("mcpserver: serving over http", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return eris.Wrap(err, "mcpserver: listen")
}
