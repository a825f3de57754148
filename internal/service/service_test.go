package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
)

const testSecret = "test-secret-key-that-is-long-enough"

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	url       string
	store     *sqlite.SQLiteStore
	auth      *api.AuthServiceClient
	publisher *recordingPublisher
}

// session holds clients that send one user's token on every call.
type session struct {
	user     *api.User
	groups   *api.GroupServiceClient
	expenses *api.ExpenseServiceClient
	auth     *api.AuthServiceClient
}

// setupTestServer serves all three services over httptest, wired the same
// way as cmd/server.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	publisher := &recordingPublisher{}

	publicInterceptors := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())
	authInterceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), publicInterceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store), authInterceptors))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, publisher), authInterceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		url:       server.URL,
		store:     store,
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		publisher: publisher,
	}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// signUp registers a user and returns clients authenticated as them.
func (e *testEnv) signUp(t *testing.T, email string) *session {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: "Tester",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	opt := connect.WithInterceptors(bearer(resp.Msg.Token))
	return &session{
		user:     resp.Msg.User,
		groups:   api.NewGroupServiceClient(http.DefaultClient, e.url, opt),
		expenses: api.NewExpenseServiceClient(http.DefaultClient, e.url, opt),
		auth:     api.NewAuthServiceClient(http.DefaultClient, e.url, opt),
	}
}

func (s *session) createGroup(t *testing.T, name string, members ...string) *api.Group {
	t.Helper()
	resp, err := s.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:     name,
		Members:  members,
		Currency: "USD",
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func (s *session) addExpense(t *testing.T, groupID, description string, amount float64, paidBy string, split ...string) *api.Expense {
	t.Helper()
	resp, err := s.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:      groupID,
		Description:  description,
		Amount:       amount,
		PaidBy:       paidBy,
		SplitBetween: split,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func (s *session) balances(t *testing.T, groupID string) *api.GetGroupBalancesResponse {
	t.Helper()
	resp, err := s.groups.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{
		GroupID: groupID,
	}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	return resp.Msg
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected %v, got %v (%v)", want, got, err)
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 0.01 && d > -0.01
}
