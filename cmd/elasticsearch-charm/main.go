package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	kingpin "gopkg.in/alecthomas/kingpin.v2"         // Command line flag parsing.

	"github.com/mintel/elasticsearch-charm/internal/app/charm" // App implementation.
)

func main() {
	app, err := charm.NewApp(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}
	kingpin.MustParse(app.Parse(charm.HookArgs(os.Args)[1:]))
	os.Exit(app.Main(prometheus.DefaultGatherer))
}
