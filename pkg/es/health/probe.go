package health

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"           // Exponential backoff retries.
	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/pkg/errors"                 // Wrap errors with stacktrace.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/elasticsearch-charm/pkg/es" // Extensions to the Elasticsearch client.
)

// Default retry settings of a Prober.
const (
	DefaultRetries      = 3
	DefaultRetryInitial = 500 * time.Millisecond
	DefaultRetryMax     = 5 * time.Second
)

// Verdict is the outcome of a health check.
type Verdict struct {
	Healthy bool

	// Last cluster status seen. StatusUnknown if there wasn't one.
	Status Status

	// Human readable reason for the verdict.
	Reason string
}

// Prober checks the health of the cluster through the local
// Elasticsearch node. Results are never cached.
type Prober struct {
	Client *elastic.Client

	// Number of retries after the first failed request.
	// Parse errors aren't retried.
	Retries uint64

	// Exponential backoff between retries.
	RetryInitial time.Duration
	RetryMax     time.Duration

	// If true, the node must also hold at least one shard
	// for the check to pass. LocalAddress must be set.
	RequireLocalShards bool

	// LocalAddress returns the IP address of the local node as
	// shown by the _cat/shards API.
	LocalAddress func(ctx context.Context) (string, error)

	Logger *zap.Logger
}

// NewProber returns a new Prober with the default retry settings.
func NewProber(client *elastic.Client, logger *zap.Logger) *Prober {
	return &Prober{
		Client:       client,
		Retries:      DefaultRetries,
		RetryInitial: DefaultRetryInitial,
		RetryMax:     DefaultRetryMax,
		Logger:       logger,
	}
}

// backoff returns the policy of retries after a failed request.
// WithMaxRetries doesn't stop when its max is 0, so no retries
// needs a StopBackOff.
func (p *Prober) backoff(ctx context.Context) backoff.BackOff {
	if p.Retries == 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.RetryInitial
	b.MaxInterval = p.RetryMax
	b.MaxElapsedTime = 0 // Bounded by retries instead.
	return backoff.WithContext(backoff.WithMaxRetries(b, p.Retries), ctx)
}

// ClusterStatus returns the current status of the cluster.
//
// Errors are of type *UnreachableError or *ParseError.
func (p *Prober) ClusterStatus(ctx context.Context) (Status, error) {
	status := StatusUnknown
	op := func() error {
		resp, err := p.Client.PerformRequest(ctx, elastic.PerformRequestOptions{
			Method: "GET",
			Path:   "/_cluster/health",
		})
		if err != nil {
			uerr := &UnreachableError{Err: err}
			if eerr, ok := err.(*elastic.Error); ok {
				uerr.StatusCode = eerr.Status
			}
			return uerr
		}
		s, err := ParseStatus(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		status = s
		return nil
	}
	notify := func(err error, wait time.Duration) {
		p.Logger.Debug("retrying cluster health request",
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(op, p.backoff(ctx), notify)
	switch err.(type) {
	case nil, *UnreachableError, *ParseError:
		return status, err
	default:
		// Context errors.
		return StatusUnknown, &UnreachableError{Err: err}
	}
}

// Check probes the cluster and returns a Verdict. The verdict is
// healthy only if the cluster status is green. Check never returns
// an error; problems are reported as an unhealthy Verdict.
func (p *Prober) Check(ctx context.Context) Verdict {
	status, err := p.ClusterStatus(ctx)
	if err != nil {
		var reason string
		switch err.(type) {
		case *ParseError:
			reason = "unparseable health response: " + err.Error()
		default:
			reason = "unreachable: " + err.Error()
		}
		p.Logger.Info("cluster health check failed", zap.String("reason", reason))
		return Verdict{Status: status, Reason: reason}
	}

	if status != StatusGreen {
		reason := fmt.Sprintf("cluster status is %q", status)
		p.Logger.Info("cluster is unhealthy", zap.String("status", string(status)))
		return Verdict{Status: status, Reason: reason}
	}

	if p.RequireLocalShards {
		if err := p.checkLocalShards(ctx); err != nil {
			p.Logger.Info("local shards check failed", zap.Error(err))
			return Verdict{Status: status, Reason: err.Error()}
		}
	}

	p.Logger.Debug("cluster is healthy")
	return Verdict{Healthy: true, Status: status, Reason: fmt.Sprintf("cluster status is %q", status)}
}

// checkLocalShards returns an error unless the local node
// holds at least one shard.
func (p *Prober) checkLocalShards(ctx context.Context) error {
	if p.LocalAddress == nil {
		return errors.New("local address unknown")
	}
	ip, err := p.LocalAddress(ctx)
	if err != nil {
		return errors.Wrap(err, "error getting local address")
	}
	shards, err := es.NewCatShardsService(p.Client).
		Columns("index", "shard", "prirep", "state", "ip").
		Do(ctx)
	if err != nil {
		return errors.Wrap(err, "unreachable: error listing shards")
	}
	local := shards.OnIP(ip)
	if len(local) == 0 {
		return errors.Errorf("no shards on local node %s", ip)
	}
	p.Logger.Debug("found local shards", zap.String("ip", ip), zap.Int("count", len(local)))
	return nil
}

// Ping returns nil if the local node answers a HEAD request to /.
func (p *Prober) Ping(ctx context.Context) error {
	resp, err := p.Client.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "HEAD",
		Path:   "/",
	})
	if err != nil {
		return errors.Wrap(err, "error communicating with Elasticsearch")
	}
	if resp.StatusCode != 200 {
		return errors.Errorf("HEAD request returned status code %d", resp.StatusCode)
	}
	return nil
}
