package es

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/olivere/elastic/v7/uritemplates"
)

// CatShardsService returns the list of shards plus some additional
// information about them.
//
// See https://www.elastic.co/guide/en/elasticsearch/reference/7.0/cat-shards.html
// for details.
type CatShardsService struct {
	client  *elastic.Client
	index   string
	local   *bool
	columns []string
}

// NewCatShardsService creates a new CatShardsService.
func NewCatShardsService(client *elastic.Client) *CatShardsService {
	return &CatShardsService{
		client: client,
	}
}

// Index limits the response to shards of this index pattern.
func (s *CatShardsService) Index(index string) *CatShardsService {
	s.index = index
	return s
}

// Local indicates to return local information, i.e. do not retrieve
// the state from master node (default: false).
func (s *CatShardsService) Local(local bool) *CatShardsService {
	s.local = &local
	return s
}

// Columns to return in the response. Use the long column names
// (i.e. `prirep` not `p`) for JSON unmarshalling to work.
func (s *CatShardsService) Columns(columns ...string) *CatShardsService {
	s.columns = columns
	return s
}

func (s *CatShardsService) buildURL() (string, url.Values, error) {
	path := "/_cat/shards"
	if s.index != "" {
		var err error
		path, err = uritemplates.Expand("/_cat/shards/{index}", map[string]string{
			"index": s.index,
		})
		if err != nil {
			return "", url.Values{}, err
		}
	}

	params := url.Values{
		"format": []string{"json"}, // always returns as JSON
	}
	if v := s.local; v != nil {
		params.Set("local", fmt.Sprint(*v))
	}
	if len(s.columns) > 0 {
		params.Set("h", strings.Join(s.columns, ","))
	}
	return path, params, nil
}

// Do executes the operation.
func (s *CatShardsService) Do(ctx context.Context) (CatShardsResponse, error) {
	path, params, err := s.buildURL()
	if err != nil {
		return nil, err
	}

	res, err := s.client.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "GET",
		Path:   path,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	var ret CatShardsResponse
	if err := (&elastic.DefaultDecoder{}).Decode(res.Body, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// CatShardsResponse is the outcome of CatShardsService.Do.
type CatShardsResponse []CatShardsResponseRow

// OnIP returns the shards held by the node with the given IP address.
func (r CatShardsResponse) OnIP(ip string) CatShardsResponse {
	var out CatShardsResponse
	for _, row := range r {
		if row.IP == ip {
			out = append(out, row)
		}
	}
	return out
}

// CatShardsResponseRow is one shard of a CatShardsResponse. Fields
// are only filled if the matching column was requested.
type CatShardsResponseRow struct {
	Index            string `json:"index"`       // index name
	Shard            string `json:"shard"`       // shard name
	PrimaryOrReplica string `json:"prirep"`      // primary ("p") or replica ("r")
	State            string `json:"state"`       // shard state
	Docs             string `json:"docs"`        // number of docs in shard
	Store            string `json:"store"`       // store size of shard (how much disk it uses)
	IP               string `json:"ip"`          // ip of node where it lives
	ID               string `json:"id"`          // unique id of node where it lives
	Node             string `json:"node"`        // name of node where it lives
	UnassignedReason string `json:"unassigned.reason"`
}
