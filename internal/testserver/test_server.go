// Package testserver runs the full HTTP stack against a temporary SQLite
// database for functional tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/hvacquote/internal/domain/activity"
	"github.com/rpggio/hvacquote/internal/domain/catalog"
	"github.com/rpggio/hvacquote/internal/domain/project"
	"github.com/rpggio/hvacquote/internal/mcp"
	"github.com/rpggio/hvacquote/internal/metrics"
	"github.com/rpggio/hvacquote/internal/sqlite"
	"github.com/rpggio/hvacquote/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Debounce is the store write delay used by test servers.
const Debounce = 20 * time.Millisecond

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	DBPath   string
	Store    *project.Store
	Activity *activity.Service
	Metrics  *metrics.Registry
	Token    string

	closed bool
}

// New starts a server on a fresh database file.
func New(t *testing.T, token string) *TestServer {
	t.Helper()
	return Open(t, token, filepath.Join(t.TempDir(), "hvacquote.db"))
}

// Open starts a server on the database at path, restoring whatever a
// previous server left there.
func Open(t *testing.T, token, path string) *TestServer {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx))

	reg := metrics.New()
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	store := project.NewStore(sqlite.NewKVRepository(db), catalog.Default(),
		project.WithDebounce(Debounce),
		project.WithActivity(activitySvc),
		project.WithMetrics(reg),
	)
	require.NoError(t, store.Open(ctx))

	mcpServer := mcp.NewServer(mcp.Config{
		Store:         store,
		Activity:      activitySvc,
		Metrics:       reg,
		AuthToken:     token,
		TransportMode: "http",
	})
	handler := transport.NewServer(transport.Options{
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{},
		),
		Estimates: store,
		Metrics:   reg.Handler(),
		AuthToken: token,
	})

	ts := &TestServer{
		Server:   httptest.NewServer(handler),
		DB:       db,
		DBPath:   path,
		Store:    store,
		Activity: activitySvc,
		Metrics:  reg,
		Token:    token,
	}
	t.Cleanup(func() { ts.Close(t) })
	return ts
}

// Close stops the server, flushing the store first. It is safe to call twice.
func (ts *TestServer) Close(t *testing.T) {
	t.Helper()
	if ts.closed {
		return
	}
	ts.closed = true
	// Streamable clients hold a standing GET open; drop it so Close returns.
	ts.Server.CloseClientConnections()
	ts.Server.Close()
	require.NoError(t, ts.Store.Close(context.Background()))
	_ = ts.DB.Close()
}

// Connect opens an MCP client session over streamable HTTP, sending the
// server's token.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	return ts.ConnectWithToken(t, ts.Token)
}

// ConnectWithToken opens an MCP client session sending token, or no
// Authorization header when token is empty.
func (ts *TestServer) ConnectWithToken(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token, next: http.DefaultTransport}},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearer struct {
	token string
	next  http.RoundTripper
}

func (b bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.token == "" {
		return b.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(req)
}
