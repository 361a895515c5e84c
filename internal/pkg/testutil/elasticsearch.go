package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/ory/dockertest"             // Docker containers for tests.
	"github.com/ory/dockertest/docker"
)

func randomName(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// RunElasticsearch runs a single node Elasticsearch Docker container
// and waits for it to respond. It returns the URL of the node and a
// func to remove the container.
//
// The test is skipped during -short or if Docker isn't available.
func RunElasticsearch(t *testing.T) (url string, teardown func()) {
	if testing.Short() {
		// Skip during short testing because running a Docker container
		// per test takes a while.
		t.Skip("skipping during -short due to dependency on an Elasticsearch container")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("skipping, failed to connect to Docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("skipping, Docker isn't reachable: %s", err)
	}

	name := randomName(6) + "-elasticsearch"
	es, err := pool.RunWithOptions(&dockertest.RunOptions{
		Hostname:     name,
		Name:         name,
		Repository:   "docker.elastic.co/elasticsearch/elasticsearch-oss",
		Tag:          "7.2.0",
		ExposedPorts: []string{"9200/tcp"},
		Env: []string{
			"cluster.name=elasticsearch",
			"bootstrap.memory_lock=true",
			"discovery.type=single-node",
			"ES_JAVA_OPTS=-Xms256m -Xmx256m",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.Ulimits = []docker.ULimit{
			{Name: "nofile", Soft: 65536, Hard: 65536},
			{Name: "memlock", Soft: -1, Hard: -1},
		}
	})
	if err != nil {
		t.Fatalf("error running Elasticsearch container: %s", err)
	}
	teardown = func() {
		if err := pool.Purge(es); err != nil {
			t.Logf("error removing Elasticsearch container: %s", err)
		}
	}

	url = "http://" + es.GetHostPort("9200/tcp")
	if err := pool.Retry(func() error {
		client, err := elastic.NewSimpleClient(elastic.SetURL(url))
		if err != nil {
			return err
		}
		_, err = client.ClusterHealth().WaitForYellowStatus().Do(context.Background())
		return err
	}); err != nil {
		teardown()
		t.Fatalf("error waiting for Elasticsearch container: %s", err)
	}
	return url, teardown
}
