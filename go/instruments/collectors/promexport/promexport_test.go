package promexport

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServeExposesMetricsAndStopsOnCancel(t *testing.T) {
	SetLiveAgents(7)
	SetReporterQueueDepth("lineprotocol", 3)
	SetOpStoreSize(42)

	var ctx, cancel = context.WithCancel(context.Background())
	var errCh = make(chan error, 1)
	go func() { errCh <- Serve(ctx, "127.0.0.1:19199") }()

	// Give the listener a moment to come up.
	time.Sleep(50 * time.Millisecond)

	var resp, err = http.Get("http://127.0.0.1:19199/debug/metrics")
	require.NoError(t, err)
	var body []byte
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "swarmbench_live_agents 7")

	cancel()
	require.NoError(t, <-errCh)
}
