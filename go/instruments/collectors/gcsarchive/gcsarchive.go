// Package gcsarchive implements an optional Collector that uploads the
// line-protocol metrics file to a GCS bucket for durable retention once a
// run finishes. It is a thin wrapper around another file-writing Collector
// (normally lineprotocol.Collector): it delegates every call to the inner
// collector and only adds the upload step to Finalize.
//
// Grounded in go/flow/builds.go's lazy-initialized *storage.Client held on
// a service struct and built with application default credentials on first
// use — the same pattern used here, minus the gs:// reader side since this
// collector only ever writes.
package gcsarchive

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/swarmbench/swarmbench/go/instruments"
)

// Inner is the file-backed collector gcsarchive wraps. instruments.Collector
// alone isn't enough: Finalize needs to know the file's path to upload it.
type Inner interface {
	instruments.Collector
	Path() string
}

// Collector delegates AddOperation/AddCustom to Inner and, on Finalize,
// uploads Inner's backing file to bucket/objectPrefix<basename> after Inner
// has flushed it to disk.
type Collector struct {
	inner        Inner
	bucket       string
	objectPrefix string

	mu       sync.Mutex
	gsClient *storage.Client
}

// New wraps inner, an already-constructed file-backed collector (such as
// lineprotocol.Collector), with an upload-on-finalize step targeting the
// given GCS bucket.
func New(inner Inner, bucket, objectPrefix string) *Collector {
	return &Collector{inner: inner, bucket: bucket, objectPrefix: objectPrefix}
}

func (c *Collector) AddOperation(record *instruments.OperationRecord) { c.inner.AddOperation(record) }
func (c *Collector) AddCustom(metric instruments.ReportMetric)        { c.inner.AddCustom(metric) }

// Finalize flushes the inner collector first, then uploads its file.
// Upload failures are logged, not propagated: losing the durable copy
// should never fail a run that otherwise completed and has its metrics on
// local disk.
func (c *Collector) Finalize() {
	c.inner.Finalize()

	var ctx = context.Background()
	var client, err = c.client(ctx)
	if err != nil {
		logrus.WithError(err).Warn("gcsarchive: building google storage client failed, skipping upload")
		return
	}

	var path = c.inner.Path()
	var file *os.File
	if file, err = os.Open(path); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("gcsarchive: reopening metrics file failed, skipping upload")
		return
	}
	defer file.Close()

	var objectName = c.objectPrefix + basename(path)
	var w = client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(w, file); err != nil {
		logrus.WithError(err).WithField("object", objectName).Warn("gcsarchive: upload failed")
		_ = w.Close()
		return
	}
	if err = w.Close(); err != nil {
		logrus.WithError(err).WithField("object", objectName).Warn("gcsarchive: upload finalize failed")
		return
	}

	logrus.WithFields(logrus.Fields{"bucket": c.bucket, "object": objectName}).Info("gcsarchive: uploaded metrics file")
}

func (c *Collector) client(ctx context.Context) (*storage.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gsClient == nil {
		var client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
		if err != nil {
			return nil, fmt.Errorf("building google storage client: %w", err)
		}
		c.gsClient = client
	}
	return c.gsClient, nil
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

