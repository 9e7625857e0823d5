package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lantern"
	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/aretw0/lantern/pkg/zodiac"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Journeys opens the journey store of a session key.
type Journeys interface {
	JourneyStore(key string) *journey.Store
}

// ZodiacResponse is the output of calculate_zodiac.
type ZodiacResponse struct {
	Date        string         `json:"date" jsonschema_description:"The birthdate that was evaluated"`
	Animal      domain.Animal  `json:"animal" jsonschema_description:"Zodiac animal"`
	Element     domain.Element `json:"element" jsonschema_description:"Zodiac element"`
	CycleYear   int            `json:"cycle_year" jsonschema_description:"Lunar year the sign belongs to"`
	Approximate bool           `json:"approximate" jsonschema_description:"Set when the year is outside the lunar new year table"`
}

// JourneyResponse is the output of get_journey.
type JourneyResponse struct {
	Session  string              `json:"session" jsonschema_description:"Session key"`
	Revealed bool                `json:"revealed" jsonschema_description:"Whether a sign was revealed"`
	Journey  domain.JourneyState `json:"journey" jsonschema_description:"Stored journey snapshot"`
}

type zodiacArgs struct {
	Date string `json:"date"`
}

type journeyArgs struct {
	Session string `json:"session"`
}

type lanternArgs struct {
	ID string `json:"id"`
}

// Server exposes read-only journey tools over the Model Context Protocol.
type Server struct {
	journeys  Journeys
	reader    ports.LanternReader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLanternReader enables the get_lantern tool.
func WithLanternReader(reader ports.LanternReader) Option {
	return func(s *Server) {
		s.reader = reader
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(journeys Journeys, opts ...Option) *Server {
	s := &Server{
		journeys:  journeys,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lantern-mcp", strings.TrimSpace(lantern.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("calculate_zodiac",
		mcp.WithDescription("Calculate the lunar zodiac animal and element of a birthdate."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Birthdate as YYYY-MM-DD")),
		mcp.WithOutputSchema[ZodiacResponse](),
	), mcp.NewStructuredToolHandler(s.handleCalculateZodiac))

	s.mcpServer.AddTool(mcp.NewTool("get_journey",
		mcp.WithDescription("Read the stored journey of a session: birthdate, sign, wishes and identity."),
		mcp.WithString("session", mcp.Description("Session key (defaults to the configured key)")),
		mcp.WithOutputSchema[JourneyResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetJourney))

	if s.reader != nil {
		s.mcpServer.AddTool(mcp.NewTool("get_lantern",
			mcp.WithDescription("Fetch a released lantern from the lantern service."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Lantern ID")),
			mcp.WithOutputSchema[domain.LanternRecord](),
		), mcp.NewStructuredToolHandler(s.handleGetLantern))
	}
}

func (s *Server) handleCalculateZodiac(ctx context.Context, request mcp.CallToolRequest, args zodiacArgs) (ZodiacResponse, error) {
	res, err := zodiac.Calculate(args.Date)
	if err != nil {
		return ZodiacResponse{}, fmt.Errorf("calculate %q: %w", args.Date, err)
	}
	return ZodiacResponse{
		Date:        args.Date,
		Animal:      res.Animal,
		Element:     res.Element,
		CycleYear:   res.CycleYear,
		Approximate: res.Approximate,
	}, nil
}

func (s *Server) handleGetJourney(ctx context.Context, request mcp.CallToolRequest, args journeyArgs) (JourneyResponse, error) {
	store := s.journeys.JourneyStore(args.Session)
	j, err := store.Load(ctx)
	if err != nil {
		s.logger.Error("get_journey failed", "session", args.Session, "err", err)
		return JourneyResponse{}, fmt.Errorf("load journey: %w", err)
	}
	return JourneyResponse{Session: store.Key(), Revealed: j.Revealed(), Journey: j}, nil
}

func (s *Server) handleGetLantern(ctx context.Context, request mcp.CallToolRequest, args lanternArgs) (domain.LanternRecord, error) {
	if args.ID == "" {
		return domain.LanternRecord{}, errors.New("id is required")
	}
	return s.reader.GetLantern(ctx, args.ID)
}
