package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	configfile "github.com/civicsignal/billfeed/internal/adapters/driven/config/file"
	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driving"
)

// mockOrchestrator records the options it was invoked with and returns
// a canned result.
type mockOrchestrator struct {
	result domain.RunResult
	err    error

	called   bool
	lastOpts driving.IngestOptions
}

func (m *mockOrchestrator) Ingest(_ context.Context, opts driving.IngestOptions) (domain.RunResult, error) {
	m.called = true
	m.lastOpts = opts
	return m.result, m.err
}

// setupTestServices wires mock services and returns a cleanup function
// that restores package state.
func setupTestServices(t *testing.T) *mockOrchestrator {
	t.Helper()

	store, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	mock := &mockOrchestrator{
		result: domain.RunResult{State: domain.RunStateDone},
	}

	oldOrchestrator := ingestOrchestrator
	oldConfig := configStore
	oldData := dataStore
	ingestOrchestrator = mock
	configStore = store
	dataStore = nil

	t.Cleanup(func() {
		ingestOrchestrator = oldOrchestrator
		configStore = oldConfig
		dataStore = oldData
		resetIngestFlags()
	})

	return mock
}

// resetIngestFlags restores flag-bound package vars between test runs,
// since cobra keeps them across Execute calls.
func resetIngestFlags() {
	ingestQuery = ""
	ingestState = ""
	ingestSince = ""
	ingestLimit = 0
	ingestMinRelevance = 0
	ingestDryRun = false
	ingestFull = false
	ingestCheckExisting = false
	ingestStaleAfter = 7 * 24 * time.Hour
	ingestFloor = 50
	for _, name := range []string{"query", "state", "since", "limit", "min-relevance", "dry-run", "full", "check-existing", "stale-after", "relevance-floor"} {
		if f := ingestCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

// execute runs the root command with the given args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
