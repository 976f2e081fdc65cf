// Package storage provides the Elasticsearch adapter that indexes full audit
// results for the dashboard's search and diff screens. Elasticsearch is
// optional: the service runs without it and only the history rows in Postgres
// remain.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
	"golang.org/x/time/rate"

	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/elasticsearch/mappings"
)

const defaultVerticalIndex = "general"

// AuditStorage indexes audit results into per-vertical indices named
// <prefix>_<vertical>. Index writes are rate limited so audit bursts cannot
// overwhelm the cluster.
type AuditStorage struct {
	client      *es.Client
	indexPrefix string
	limiter     *rate.Limiter
}

// NewAuditStorage creates a new Elasticsearch audit storage instance.
// indexRPS caps index operations per second; zero or negative disables the cap.
func NewAuditStorage(client *es.Client, indexPrefix string, indexRPS int) *AuditStorage {
	limit := rate.Inf
	burst := 1
	if indexRPS > 0 {
		limit = rate.Limit(indexRPS)
		burst = indexRPS
	}
	return &AuditStorage{
		client:      client,
		indexPrefix: indexPrefix,
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// IndexName returns the index holding audits for a vertical.
func (s *AuditStorage) IndexName(vertical string) string {
	v := strings.ToLower(strings.TrimSpace(vertical))
	if v == "" {
		v = defaultVerticalIndex
	}
	v = strings.ReplaceAll(v, " ", "_")
	return s.indexPrefix + "_" + v
}

// EnsureIndex creates the index for a vertical if it does not exist yet.
func (s *AuditStorage) EnsureIndex(ctx context.Context, vertical string) error {
	index := s.IndexName(vertical)

	exists, err := s.client.Indices.Exists(
		[]string{index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", index, err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == 200 {
		return nil
	}

	mapping := mappings.NewAuditResultMapping()
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("invalid audit result mapping: %w", err)
	}
	body, err := mapping.GetJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize mapping: %w", err)
	}

	res, err := s.client.Indices.Create(
		index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index %s: %s", index, res.String())
	}

	return nil
}

// IndexAuditResult indexes one audit result, keyed by app ID so the index
// always holds the latest audit per app. The full trail lives in Postgres.
func (s *AuditStorage) IndexAuditResult(ctx context.Context, result *domain.AuditResult) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("index rate limit: %w", err)
	}

	docBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal audit result: %w", err)
	}

	res, err := s.client.Index(
		s.IndexName(result.Vertical),
		bytes.NewReader(docBytes),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(result.AppID),
	)
	if err != nil {
		return fmt.Errorf("failed to index audit result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing audit result: %s", res.String())
	}

	return nil
}

// GetAuditResult fetches the latest indexed audit result for an app.
func (s *AuditStorage) GetAuditResult(ctx context.Context, vertical, appID string) (*domain.AuditResult, error) {
	res, err := s.client.Get(
		s.IndexName(vertical),
		appID,
		s.client.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit result: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, fmt.Errorf("audit result for app %q: not found", appID)
	}
	if res.IsError() {
		return nil, fmt.Errorf("error getting audit result: %s", res.String())
	}

	var doc struct {
		Source domain.AuditResult `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding audit result: %w", err)
	}

	return &doc.Source, nil
}

// SearchByCoverage returns app IDs in a vertical whose latest audit coverage
// is at or below the given percentage, worst first.
func (s *AuditStorage) SearchByCoverage(ctx context.Context, vertical string, maxCoveragePct, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"stats.coverage_pct": map[string]any{
					"lte": maxCoveragePct,
				},
			},
		},
		"size": size,
		"sort": []map[string]any{
			{"stats.coverage_pct": map[string]any{"order": "asc"}},
		},
		"_source": []string{"app_id"},
	}

	queryBytes, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.IndexName(vertical)),
		s.client.Search.WithBody(bytes.NewReader(queryBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source struct {
					AppID string `json:"app_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	appIDs := make([]string, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		appIDs = append(appIDs, hit.Source.AppID)
	}

	return appIDs, nil
}

// TestConnection tests the connection to Elasticsearch
func (s *AuditStorage) TestConnection(ctx context.Context) error {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response from Elasticsearch: %s", res.String())
	}

	return nil
}
