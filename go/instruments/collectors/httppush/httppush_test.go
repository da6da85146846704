package httppush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

func TestNewFromEnvRequiresAllThreeVariables(t *testing.T) {
	os.Unsetenv("INFLUX_HOST")
	os.Unsetenv("INFLUX_BUCKET")
	os.Unsetenv("INFLUX_TOKEN")

	var _, err = NewFromEnv()
	require.ErrorContains(t, err, "INFLUX_HOST")

	os.Setenv("INFLUX_HOST", "http://localhost:8086")
	_, err = NewFromEnv()
	require.ErrorContains(t, err, "INFLUX_BUCKET")

	os.Setenv("INFLUX_BUCKET", "bench")
	_, err = NewFromEnv()
	require.ErrorContains(t, err, "INFLUX_TOKEN")

	os.Setenv("INFLUX_TOKEN", "secret")
	var cfg Config
	cfg, err = NewFromEnv()
	require.NoError(t, err)
	require.Equal(t, "bench", cfg.Bucket)

	os.Unsetenv("INFLUX_HOST")
	os.Unsetenv("INFLUX_BUCKET")
	os.Unsetenv("INFLUX_TOKEN")
}

func TestPushesBatchOnShutdown(t *testing.T) {
	var mu sync.Mutex
	var receivedBody string
	var receivedAuth string

	var srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body, _ = io.ReadAll(r.Body)
		mu.Lock()
		receivedBody = string(body)
		receivedAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var coord = shutdown.New()
	var bridge = executor.New(coord)
	var c = New(bridge, coord, Config{Host: srv.URL, Bucket: "bench", Token: "secret"})

	var rec = instruments.NewOperationRecord("zome_call")
	rec.Finish(false)
	c.AddOperation(rec)

	coord.Broadcast()
	c.Finalize()
	bridge.WaitTracked()

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, receivedBody, "wt.instruments.operation_duration")
	require.Equal(t, "Token secret", receivedAuth)
}
