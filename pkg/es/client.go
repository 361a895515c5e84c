// Package es holds extensions to the github.com/olivere/elastic/v7
// Elasticsearch client for talking to the local node.
package es

import (
	"net/http"
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
)

// DefaultTimeout is the default timeout of HTTP requests to Elasticsearch.
const DefaultTimeout = 10 * time.Second

// NewSimpleClient returns a client for the single Elasticsearch node at url.
// It doesn't sniff or healthcheck, so unlike elastic.NewClient it
// won't fail if the node is down. The client never retries on its own.
//
// If httpClient is nil, a client with DefaultTimeout is used.
func NewSimpleClient(url string, httpClient *http.Client, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetHttpClient(httpClient),
		elastic.SetRetrier(elastic.NewStopRetrier()),
	}
	return elastic.NewSimpleClient(append(opts, options...)...)
}
