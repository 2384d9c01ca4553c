// Package search keeps the Elasticsearch user directory.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

const (
	requestTimeout = 3 * time.Second
	maxSearchSize  = 50
)

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "username": {"type": "keyword", "fields": {"text": {"type": "text"}}},
      "name":     {"type": "text"},
      "email":    {"type": "keyword", "fields": {"text": {"type": "text"}}},
      "active":   {"type": "boolean"},
      "roles":    {"type": "keyword"}
    }
  }
}`

// UserIndex reads and writes user summaries in one index.
type UserIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, IndexName: index}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Indices.Exists([]string{x.IndexName}, x.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", x.IndexName, err)
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.ES.Indices.Create(x.IndexName,
		x.ES.Indices.Create.WithContext(ctx),
		x.ES.Indices.Create.WithBody(strings.NewReader(usersMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", x.IndexName, err)
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("create index", res)
}

// Index upserts the summary under its user id.
func (x *UserIndex) Index(ctx context.Context, u entity.UserSummary) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("index user %s: %w", u.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	return responseError("index user", res)
}

// Delete removes the user document. A missing document is not an error.
func (x *UserIndex) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete user", res)
}

// Search runs a multi_match over username, name and email.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	if size <= 0 || size > maxSearchSize {
		size = maxSearchSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username.text^3", "email.text^2", "name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if err := responseError("search users", res); err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.UserSummary `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]entity.UserSummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func responseError(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	return fmt.Errorf("%s: elasticsearch returned %s", op, res.Status())
}
