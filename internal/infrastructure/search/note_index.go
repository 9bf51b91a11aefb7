// Package search mirrors notes into Elasticsearch for the search endpoint.
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
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
)

const (
	requestTimeout = 3 * time.Second
	maxHits        = 1000
)

// title and content use the wildcard type so substring search stays exact
// and case-insensitive, matching the in-memory filter.
const indexMapping = `{
  "mappings": {
    "properties": {
      "user_id":    {"type": "keyword"},
      "title":      {"type": "wildcard"},
      "content":    {"type": "wildcard"},
      "tags":       {"type": "keyword"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

type NoteIndex struct {
	ES        *elasticsearch.Client
	IndexName string
	Logger    *logrus.Logger
}

func NewNoteIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *NoteIndex {
	return &NoteIndex{ES: es, IndexName: index, Logger: logger}
}

type noteDoc struct {
	UserID    string   `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// EnsureIndex creates the index with its mapping when missing.
func (x *NoteIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{x.IndexName}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: x.IndexName, Body: strings.NewReader(indexMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	if x.Logger != nil {
		x.Logger.WithField("index", x.IndexName).Info("es index created")
	}
	return nil
}

func (x *NoteIndex) Index(ctx context.Context, n entity.Note) error {
	b, err := json.Marshal(noteDoc{
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      entity.NormalizeTags(n.Tags),
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: n.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index note %s: %s", n.ID, res.Status())
	}
	return nil
}

// Remove tolerates documents that were never indexed.
func (x *NoteIndex) Remove(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete note %s: %s", id, res.Status())
	}
	return nil
}

func (x *NoteIndex) Search(ctx context.Context, userID string, crit notefilter.Criteria) ([]string, error) {
	b, err := json.Marshal(buildQuery(userID, crit))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func buildQuery(userID string, crit notefilter.Criteria) map[string]any {
	filter := []map[string]any{
		{"term": map[string]any{"user_id": userID}},
	}
	if crit.Tag != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"tags": crit.Tag}})
	}
	boolQuery := map[string]any{"filter": filter}
	if crit.Search != "" {
		pattern := "*" + escapeWildcard(crit.Search) + "*"
		boolQuery["should"] = []map[string]any{
			wildcard("title", pattern),
			wildcard("content", pattern),
		}
		boolQuery["minimum_should_match"] = 1
	}
	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort":  []map[string]any{{"updated_at": map[string]any{"order": "desc"}}},
		"size":  maxHits,
	}
}

func wildcard(field, pattern string) map[string]any {
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{"value": pattern, "case_insensitive": true},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
