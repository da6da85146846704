// Package telegraf materializes a telegraf agent configuration that reads
// the line-protocol metrics file the file collector (see
// go/instruments/collectors/lineprotocol) writes and republishes it to an
// InfluxDB v2-compatible endpoint. swarmbench never runs telegraf itself;
// this just hands an operator a ready-to-use config file, the same
// "generate the text, let the operator supply the binary" role
// metrics/import_host_metrics/src/telegraf/config.rs plays in the original.
package telegraf

import (
	"fmt"
	"io"
	"strings"
)

// Config builds a telegraf TOML config with an [[outputs.influxdb_v2]]
// block pointed at the given InfluxDB endpoint and an [[inputs.file]] block
// tailing the swarmbench metrics file.
type Config struct {
	bucket          string
	influxdbToken   string
	influxdbURL     string
	metricsFilePath string
	organization    string
}

// NewConfig returns a zero-value Config; use the With* methods to fill it
// in before calling Write.
func NewConfig() Config {
	return Config{}
}

func (c Config) WithBucket(bucket string) Config {
	c.bucket = bucket
	return c
}

func (c Config) WithInfluxDBToken(token string) Config {
	c.influxdbToken = token
	return c
}

func (c Config) WithInfluxDBURL(url string) Config {
	c.influxdbURL = url
	return c
}

func (c Config) WithMetricsFilePath(path string) Config {
	c.metricsFilePath = path
	return c
}

func (c Config) WithOrganization(organization string) Config {
	c.organization = organization
	return c
}

const configTemplate = `
[[outputs.influxdb_v2]]
  ## The URLs of the InfluxDB cluster nodes.
  urls = ["%s"]
  ## Token for authentication
  token = "%s"
  ## Organization is the name of the organization you wish to write to
  organization = "%s"
  ## Destination bucket to write into
  bucket = "%s"

[[inputs.file]]
  ## Files to parse each interval. Accept standard unix glob matching rules,
  ## as well as ** to match recursive files and directories.
  files = ["%s"]
  ## Data format to consume.
  data_format = "influx"
  ## Character encoding to use when interpreting the file contents.  Invalid
  ## characters are replaced using the unicode replacement character.  When set
  ## to the empty string the encoding will be automatically determined.
  character_encoding = "utf-8"
`

// Write renders the config as TOML to w.
func (c Config) Write(w io.Writer) error {
	var escapedPath = strings.ReplaceAll(c.metricsFilePath, `\`, `\\`)
	var _, err = fmt.Fprintf(w, configTemplate, c.influxdbURL, c.influxdbToken, c.organization, c.bucket, escapedPath)
	if err != nil {
		return fmt.Errorf("telegraf: writing config: %w", err)
	}
	return nil
}
