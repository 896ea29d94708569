// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/internal/testutil"
	"github.com/leapstack-labs/leaptable/internal/ui/notifier"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// TestSecret signs session cookies in tests.
const TestSecret = "test-secret-key-32-bytes-long!!"

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Controller   *session.Controller
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture connects a controller to a fresh demo database with
// defaultTable selected and its first page loaded. An empty defaultTable
// leaves the controller connected with no table.
func SetupTestFixture(t *testing.T, defaultTable string) *TestFixture {
	t.Helper()

	adp := testutil.OpenDemoDB(t)
	ctrl := session.New(adp, core.AdapterConfig{Type: "sqlite"},
		session.WithLogger(testutil.NewTestLogger(t)),
		session.WithDefaultTable(defaultTable))
	require.NoError(t, ctrl.Connect(context.Background()))

	return &TestFixture{
		Controller:   ctrl,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte(TestSecret))
}
