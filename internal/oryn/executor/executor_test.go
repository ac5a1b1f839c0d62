package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oryn/internal/oryn/backend/fakebackend"
	"oryn/internal/oryn/orynconfig"
	"oryn/internal/oryn/protocol"
)

func newTestExecutor(t *testing.T) (*Executor, *fakebackend.Backend) {
	t.Helper()
	b := fakebackend.New()
	cfg := orynconfig.DefaultConfig()
	cfg.Learner.StorePath = t.TempDir()
	return New(b, cfg), b
}

func scanWith(els ...protocol.Element) protocol.ScanResult {
	return protocol.ScanResult{Page: protocol.Page{URL: "https://example.com"}, Elements: els}
}

func TestExecuteLineClicksByText(t *testing.T) {
	e, b := newTestExecutor(t)
	b.SeedScan(scanWith(protocol.Element{ID: 1, ElementType: "button", Text: "Sign In"}))

	out := e.ExecuteLine(context.Background(), `click "Sign In"`)
	assert.Contains(t, out, "ok")
	assert.Contains(t, b.Log, "scanner:click")
}

func TestExecuteLineResolutionMissReturnsFormattedError(t *testing.T) {
	e, b := newTestExecutor(t)
	b.SeedScan(scanWith(protocol.Element{ID: 1, ElementType: "button", Text: "Cancel"}))

	out := e.ExecuteLine(context.Background(), `click "Sign In"`)
	assert.Contains(t, out, "Resolution Error")
}

// After the first scan goes stale (the seeded element vanishes), the
// executor rescans exactly once and succeeds if the retry's scan has it.
func TestExecuteLineRetriesOnceAfterRescan(t *testing.T) {
	e, b := newTestExecutor(t)
	b.SeedScan(scanWith(protocol.Element{ID: 1, ElementType: "button", Text: "Cancel"}))

	// Prime the cached context with the "Cancel"-only scan, then queue the
	// "Sign In" replacement for the rescan the resolution miss triggers.
	e.ExecuteLine(context.Background(), "observe")
	b.QueueScan(scanWith(protocol.Element{ID: 2, ElementType: "button", Text: "Sign In"}))

	out := e.ExecuteLine(context.Background(), `click "Sign In"`)
	assert.Contains(t, out, "ok")

	scanCalls := 0
	for _, l := range b.Log {
		if l == "scanner:scan" {
			scanCalls++
		}
	}
	assert.Equal(t, 2, scanCalls)
}

func TestExecuteLineGotoDispatchesNavigate(t *testing.T) {
	e, b := newTestExecutor(t)
	out := e.ExecuteLine(context.Background(), `goto example.com`)
	assert.Contains(t, out, "Navigated to example.com")
	assert.Contains(t, b.Log, "navigate:example.com")
}

func TestExecuteLineParseErrorSurfaces(t *testing.T) {
	e, _ := newTestExecutor(t)
	out := e.ExecuteLine(context.Background(), `bogus verb here`)
	assert.Contains(t, out, "Parse Error")
}

func TestExecuteLineEmptyLineIsNoop(t *testing.T) {
	e, _ := newTestExecutor(t)
	assert.Equal(t, "", e.ExecuteLine(context.Background(), "   "))
}

func TestExecuteLineExitIsPeripheralNotResolved(t *testing.T) {
	e, b := newTestExecutor(t)
	out := e.ExecuteLine(context.Background(), "exit")
	assert.Equal(t, "Goodbye.", out)
	assert.Empty(t, b.Log)
}

func TestExecuteLineHelpPeripheral(t *testing.T) {
	e, _ := newTestExecutor(t)
	out := e.ExecuteLine(context.Background(), "help")
	assert.Contains(t, out, "oryn")
}

func TestExecuteLineCookiesRoundTrip(t *testing.T) {
	e, _ := newTestExecutor(t)
	setOut := e.ExecuteLine(context.Background(), `cookies set session abc123`)
	assert.Contains(t, setOut, "Set cookie session")

	listOut := e.ExecuteLine(context.Background(), "cookies")
	assert.Contains(t, listOut, "session")
}

func TestExecuteLineLoginInfersSoleSubmittable(t *testing.T) {
	e, b := newTestExecutor(t)
	b.SeedScan(scanWith(
		protocol.Element{ID: 1, ElementType: "input", Attributes: map[string]string{"autocomplete": "username"}},
		protocol.Element{ID: 2, ElementType: "input", Attributes: map[string]string{"type": "password"}},
		protocol.Element{ID: 3, ElementType: "form"},
	))

	out := e.ExecuteLine(context.Background(), `login --user bob --pass hunter2`)
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Login submitted")
	assert.Contains(t, b.Log, "scanner:submit")
}

func TestExecuteScriptRunsEveryLineAndJoinsOutput(t *testing.T) {
	e, b := newTestExecutor(t)
	b.SeedScan(scanWith(protocol.Element{ID: 1, ElementType: "button", Text: "Sign In"}))
	out := e.ExecuteScript(context.Background(), []string{`click "Sign In"`, "exit"})
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "Goodbye.")
}

func TestLastScanReflectsMostRecentScan(t *testing.T) {
	e, b := newTestExecutor(t)
	_, ok := e.LastScan()
	assert.False(t, ok)

	b.SeedScan(scanWith(protocol.Element{ID: 1, ElementType: "button", Text: "Sign In"}))
	e.ExecuteLine(context.Background(), `click "Sign In"`)

	s, ok := e.LastScan()
	require.True(t, ok)
	assert.Len(t, s.Elements, 1)
}
