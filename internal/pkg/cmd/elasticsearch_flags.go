package cmd

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/elasticsearch-charm/pkg/es"        // Extensions to the Elasticsearch client.
	"github.com/mintel/elasticsearch-charm/pkg/es/health" // Cluster health probing.
)

// ElasticsearchFlags represents a base set of flags for
// connecting to the local Elasticsearch node.
type ElasticsearchFlags struct {
	// URL of the Elasticsearch node.
	URL *url.URL

	// Timeout of each HTTP request.
	Timeout time.Duration

	// Number of times to retry failed requests.
	Retries uint64

	// Exponential backoff retries flags.
	Retry struct {
		// Initial backoff duration.
		Init time.Duration

		// Max backoff duration.
		Max time.Duration
	}
}

// NewElasticsearchFlags returns a new ElasticsearchFlags.
func NewElasticsearchFlags(app Flagger, retries int, retryInit, retryMax time.Duration) *ElasticsearchFlags {
	var f ElasticsearchFlags

	Flag(app, "elasticsearch.url", "URL of the local Elasticsearch node.").
		Short('e').
		Default(elastic.DefaultURL).
		URLVar(&f.URL)

	Flag(app, "elasticsearch.timeout", "Timeout of requests to Elasticsearch.").
		Default(es.DefaultTimeout.String()).
		DurationVar(&f.Timeout)

	Flag(app, "elasticsearch.retries", "Number of times to retry failed requests to Elasticsearch.").
		Default(strconv.Itoa(retries)).
		Uint64Var(&f.Retries)

	Flag(app, "elasticsearch.retry.init", "Initial duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryInit.String()).
		DurationVar(&f.Retry.Init)

	Flag(app, "elasticsearch.retry.max", "Max duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryMax.String()).
		DurationVar(&f.Retry.Max)

	return &f
}

// NewElasticsearchClient returns a new Elasticsearch client
// configured with the URL and timeout flag values.
// If base is non-nil its transport is used.
func (f *ElasticsearchFlags) NewElasticsearchClient(base *http.Client, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	c := &http.Client{Timeout: f.Timeout}
	if base != nil {
		c.Transport = base.Transport
	}
	return es.NewSimpleClient(f.URL.String(), c, options...)
}

// NewProber returns a health.Prober using client, configured
// with the retry flag values.
func (f *ElasticsearchFlags) NewProber(client *elastic.Client, logger *zap.Logger) *health.Prober {
	p := health.NewProber(client, logger)
	p.Retries = f.Retries
	p.RetryInitial = f.Retry.Init
	p.RetryMax = f.Retry.Max
	return p
}
