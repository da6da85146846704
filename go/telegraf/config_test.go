package telegraf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWrite(t *testing.T) {
	var cfg = NewConfig().
		WithInfluxDBURL("http://localhost:8086").
		WithInfluxDBToken("my-token").
		WithOrganization("my-org").
		WithBucket("my-bucket").
		WithMetricsFilePath("/path/to/metrics.influx")

	var sb strings.Builder
	require.NoError(t, cfg.Write(&sb))

	var content = sb.String()
	assert.Contains(t, content, `urls = ["http://localhost:8086"]`)
	assert.Contains(t, content, `token = "my-token"`)
	assert.Contains(t, content, `organization = "my-org"`)
	assert.Contains(t, content, `bucket = "my-bucket"`)
	assert.Contains(t, content, `files = ["/path/to/metrics.influx"]`)
}

func TestConfigWriteEscapesBackslashes(t *testing.T) {
	var cfg = NewConfig().WithMetricsFilePath(`C:\metrics\wt.influx`)

	var sb strings.Builder
	require.NoError(t, cfg.Write(&sb))

	assert.Contains(t, sb.String(), `files = ["C:\\metrics\\wt.influx"]`)
}
