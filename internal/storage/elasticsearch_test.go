package storage_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asolytics/combo-engine/internal/domain"
	"github.com/asolytics/combo-engine/internal/storage"
)

// mockTransport implements http.RoundTripper for mocking Elasticsearch responses
type mockTransport struct {
	RoundTripFn func(req *http.Request) (*http.Response, error)
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.RoundTripFn(req)
}

func esResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
	}
}

func newMockStorage(t *testing.T, fn func(req *http.Request) (*http.Response, error)) *storage.AuditStorage {
	t.Helper()
	client, err := es.NewClient(es.Config{Transport: &mockTransport{RoundTripFn: fn}})
	require.NoError(t, err)
	return storage.NewAuditStorage(client, "aso_audits", 0)
}

func TestIndexName(t *testing.T) {
	s := storage.NewAuditStorage(nil, "aso_audits", 0)

	assert.Equal(t, "aso_audits_games", s.IndexName("games"))
	assert.Equal(t, "aso_audits_language_learning", s.IndexName("Language Learning"))
	assert.Equal(t, "aso_audits_general", s.IndexName(""))
	assert.Equal(t, "aso_audits_general", s.IndexName("  "))
}

func TestGetAuditResult(t *testing.T) {
	s := newMockStorage(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/aso_audits_games/_doc/app-1", req.URL.Path)
		return esResponse(http.StatusOK, `{
			"_id": "app-1",
			"_source": {
				"app_id": "app-1",
				"vertical": "games",
				"title": "Puzzle Quest",
				"stats": {"total_possible": 10, "existing": 4, "missing": 6, "coverage_pct": 40}
			}
		}`), nil
	})

	result, err := s.GetAuditResult(context.Background(), "games", "app-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.AppID)
	assert.Equal(t, "games", result.Vertical)
	assert.Equal(t, 40, result.Stats.CoveragePct)
}

func TestGetAuditResult_NotFound(t *testing.T) {
	s := newMockStorage(t, func(_ *http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{"found": false}`), nil
	})

	result, err := s.GetAuditResult(context.Background(), "games", "app-404")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "not found")
}

func TestSearchByCoverage(t *testing.T) {
	var captured []byte
	s := newMockStorage(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/aso_audits_games/_search", req.URL.Path)
		var err error
		captured, err = io.ReadAll(req.Body)
		require.NoError(t, err)
		return esResponse(http.StatusOK, `{
			"hits": {
				"hits": [
					{"_source": {"app_id": "app-low"}},
					{"_source": {"app_id": "app-mid"}}
				]
			}
		}`), nil
	})

	appIDs, err := s.SearchByCoverage(context.Background(), "games", 50, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"app-low", "app-mid"}, appIDs)

	// Worst coverage first, capped at the requested percentage.
	body := string(captured)
	assert.Contains(t, body, `"stats.coverage_pct":{"lte":50}`)
	assert.Contains(t, body, `"order":"asc"`)
	assert.Contains(t, body, `"size":10`)
}

func TestSearchByCoverage_ErrorResponse(t *testing.T) {
	s := newMockStorage(t, func(_ *http.Request) (*http.Response, error) {
		return esResponse(http.StatusInternalServerError, `{"error":{"type":"search_phase_execution_exception"}}`), nil
	})

	_, err := s.SearchByCoverage(context.Background(), "games", 50, 10)
	require.Error(t, err)
}

func TestIndexAuditResult(t *testing.T) {
	s := newMockStorage(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/aso_audits_general/_doc/app-1", req.URL.Path)
		return esResponse(http.StatusCreated, `{"result": "created"}`), nil
	})

	err := s.IndexAuditResult(context.Background(), &domain.AuditResult{AppID: "app-1"})
	require.NoError(t, err)
}
