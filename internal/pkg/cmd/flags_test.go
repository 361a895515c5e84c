package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert" // Test assertions e.g. equality.
	"go.uber.org/zap"                    // Logging.

	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.
)

func TestEnvar(t *testing.T) {
	assert.Equal(t, "ES_CHARM_ELASTICSEARCH_URL", Envar("elasticsearch.url"))
	assert.Equal(t, "ES_CHARM_LOG_LEVEL", Envar("log.level"))
	assert.Equal(t, "ES_CHARM_DATA_DIR", Envar("data-dir"))
}

func TestNewElasticsearchFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		app := kingpin.New("testapp", "usage")
		f := NewElasticsearchFlags(app, 3, time.Second, 10*time.Second)
		_, err := app.Parse(nil)
		assert.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:9200", f.URL.String())
		assert.Equal(t, uint64(3), f.Retries)
		assert.Equal(t, time.Second, f.Retry.Init)
		assert.Equal(t, 10*time.Second, f.Retry.Max)
	})

	t.Run("flags", func(t *testing.T) {
		app := kingpin.New("testapp", "usage")
		f := NewElasticsearchFlags(app, 3, time.Second, 10*time.Second)
		_, err := app.Parse([]string{
			"--elasticsearch.url", "http://10.0.0.1:9200",
			"--elasticsearch.timeout", "2s",
			"--elasticsearch.retries", "0",
			"--elasticsearch.retry.max", "3s",
		})
		assert.NoError(t, err)
		assert.Equal(t, "http://10.0.0.1:9200", f.URL.String())
		assert.Equal(t, 2*time.Second, f.Timeout)
		assert.Equal(t, uint64(0), f.Retries)
		assert.Equal(t, 3*time.Second, f.Retry.Max)

		c, err := f.NewElasticsearchClient(nil)
		if assert.NoError(t, err) {
			p := f.NewProber(c, zap.NewNop())
			assert.Equal(t, uint64(0), p.Retries)
			assert.Equal(t, 3*time.Second, p.RetryMax)
		}
	})

	t.Run("envar", func(t *testing.T) {
		os.Setenv("ES_CHARM_ELASTICSEARCH_URL", "http://10.0.0.2:9200")
		defer os.Unsetenv("ES_CHARM_ELASTICSEARCH_URL")

		app := kingpin.New("testapp", "usage")
		f := NewElasticsearchFlags(app, 3, time.Second, 10*time.Second)
		_, err := app.Parse(nil)
		assert.NoError(t, err)
		assert.Equal(t, "http://10.0.0.2:9200", f.URL.String())
	})
}

func TestNewLoggingFlags(t *testing.T) {
	app := kingpin.New("testapp", "usage")
	f := NewLoggingFlags(app, "INFO")
	_, err := app.Parse([]string{"--log.level", "debug"})
	assert.NoError(t, err)
	assert.Equal(t, zap.DebugLevel, f.LogLevel)

	logger := f.NewLogger()
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewServerFlags(t *testing.T) {
	app := kingpin.New("testapp", "usage")
	f := NewServerFlags(app, 9201)
	_, err := app.Parse([]string{"--serve.port", "8080"})
	assert.NoError(t, err)
	assert.Equal(t, uint16(8080), f.Port)
	assert.Equal(t, "/metrics", f.MetricsPath)
	assert.Equal(t, "/livez", f.LivePath)
	assert.Equal(t, "/readyz", f.ReadyPath)
	assert.Equal(t, "0.0.0.0:8080", f.NewServer(nil).Addr)
}
