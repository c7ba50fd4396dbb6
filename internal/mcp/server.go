package mcp

import (
	"context"
	"log/slog"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/estimate"
	"github.com/rpggio/hvacquote/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "hvacquote"
	ServerVersion = "0.1.0"
)

// EstimateStore is the project store surface the tools drive.
// *project.Store satisfies it.
type EstimateStore interface {
	Catalog() *catalog.Catalog
	Active() project.Project
	ActiveID() string
	Pending() bool
	TotalPrice() float64
	Summary() estimate.Summary
	GroupByType() []estimate.Group

	AddItem(item estimate.LineItem) estimate.LineItem
	UpdateItem(item estimate.LineItem) bool
	RemoveItem(id string) bool
	RenameProject(name string)
	UpdateSettings(update project.SettingsUpdate) project.Settings
	ResetSession() string
	CreateNewProject() string

	LoadProject(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	SavedProjects(ctx context.Context) ([]project.IndexEntry, error)
	ReplaceCatalog(ctx context.Context, defs []catalog.EquipmentType) (*catalog.Catalog, error)
	Flush(ctx context.Context) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// ToolMetrics counts tool invocations.
type ToolMetrics interface {
	ObserveToolCall(tool string, err error)
}

// Config contains server configuration.
type Config struct {
	Store    EstimateStore
	Activity ActivityService // optional
	Metrics  ToolMetrics     // optional
	// AuthToken is the bearer token required in HTTP mode. Empty disables auth.
	AuthToken     string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is a local pipe; only HTTP is authenticated.
	if cfg.TransportMode != "stdio" && cfg.AuthToken != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &tools{
		store:    cfg.Store,
		activity: cfg.Activity,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	})

	return server
}

type noopMetrics struct{}

func (noopMetrics) ObserveToolCall(string, error) {}
