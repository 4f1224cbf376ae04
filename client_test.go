package scholargraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarkit/scholargraph/config"
	"github.com/scholarkit/scholargraph/domain"
)

const shaID = "649def34f8be52c8b66281af98ae884c09aef38b"

// newTestClient builds a client against an httptest server with fast retry
// and generous rate settings so tests never wait on the limiter.
func newTestClient(t *testing.T, handler http.Handler, mutate func(*config.Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.BaseURL = server.URL
	cfg.Timeout = 5 * time.Second
	cfg.RequestsPerWindow = 1000
	cfg.WindowDuration = time.Second
	cfg.RetryAttempts = 1
	cfg.RetryBackoff = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := New(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return client
}

func paperSearchHandler(t *testing.T, byQuery map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/paper/search", r.URL.Path)
		body, ok := byQuery[r.URL.Query().Get("query")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "no matches"}`))
			return
		}
		w.Write([]byte(body))
	})
}

func TestNew(t *testing.T) {
	t.Run("rejects invalid configuration", func(t *testing.T) {
		cfg := config.Default()
		cfg.SimilarityThreshold = 2.0

		_, err := New(cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("defaults are accepted", func(t *testing.T) {
		client, err := New(config.Default(), WithLogger(zerolog.Nop()))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_Metrics(t *testing.T) {
	t.Run("lookups and requests are counted when metrics are enabled", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"paperId": "p1", "title": "Go"}]}`))
		}))
		t.Cleanup(server.Close)

		cfg := config.Default()
		cfg.BaseURL = server.URL
		cfg.RequestsPerWindow = 1000
		cfg.WindowDuration = time.Second
		cfg.Metrics.Enabled = true

		client, err := New(cfg, WithLogger(zerolog.Nop()), WithMetricsRegisterer(reg))
		require.NoError(t, err)

		_, err = client.GetPaperByKeyword(context.Background(), "Go", 1)
		require.NoError(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(
			client.metrics.LookupsTotal.WithLabelValues("paper_by_keyword")))
		assert.Equal(t, 1.0, testutil.ToFloat64(
			client.metrics.APIRequestsTotal.WithLabelValues("paper/search")))
	})
}

func TestClient_GetPaperByTitle(t *testing.T) {
	const page = `{"total": 2, "offset": 0, "data": [
		{"paperId": "p-bert", "title": "BERT: Pre-training of Deep Bidirectional Transformers"},
		{"paperId": "p-attn", "title": "Attention Is All You Need"}
	]}`

	t.Run("returns the best candidate at or above the threshold", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"attention is all you need": page,
		}), nil)

		paper, err := client.GetPaperByTitle(context.Background(), "attention is all you need")
		require.NoError(t, err)
		require.NotNil(t, paper)
		assert.Equal(t, "p-attn", paper.PaperID)
	})

	t.Run("returns nil when no candidate clears the threshold", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"a completely different topic": page,
		}), nil)

		paper, err := client.GetPaperByTitle(context.Background(), "a completely different topic")
		require.NoError(t, err)
		assert.Nil(t, paper)
	})

	t.Run("a lower threshold accepts looser matches", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"attention is what you need": page,
		}), func(cfg *config.Config) {
			cfg.SimilarityThreshold = 0.5
		})

		paper, err := client.GetPaperByTitle(context.Background(), "attention is what you need")
		require.NoError(t, err)
		require.NotNil(t, paper)
		assert.Equal(t, "p-attn", paper.PaperID)
	})

	t.Run("empty search results are not an error", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"nothing here": `{"total": 0, "offset": 0, "data": []}`,
		}), nil)

		paper, err := client.GetPaperByTitle(context.Background(), "nothing here")
		require.NoError(t, err)
		assert.Nil(t, paper)
	})

	t.Run("a 404 response is not an error either", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{}), nil)

		paper, err := client.GetPaperByTitle(context.Background(), "anything")
		require.NoError(t, err)
		assert.Nil(t, paper)
	})

	t.Run("rejects an empty title without a network call", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}), nil)

		_, err := client.GetPaperByTitle(context.Background(), "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, calls.Load())
	})

	t.Run("repeated lookups return the same record", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"attention is all you need": page,
		}), nil)

		first, err := client.GetPaperByTitle(context.Background(), "attention is all you need")
		require.NoError(t, err)
		second, err := client.GetPaperByTitle(context.Background(), "attention is all you need")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestClient_GetPapersByKeyword(t *testing.T) {
	aiPage := `{"total": 2, "offset": 0, "data": [
		{"paperId": "ai-1", "title": "Deep Learning"},
		{"paperId": "ai-2", "title": "Reinforcement Learning: An Introduction"}
	]}`

	t.Run("found and missing keywords are both reported", func(t *testing.T) {
		client := newTestClient(t, paperSearchHandler(t, map[string]string{
			"Artificial Intelligence": aiPage,
		}), nil)

		res, err := client.GetPapersByKeyword(context.Background(),
			[]string{"Artificial Intelligence", "Blockchain"}, 2)
		require.NoError(t, err)

		require.Len(t, res.Papers, 2, "one entry per queried keyword")
		assert.Len(t, res.Papers["Artificial Intelligence"], 2)
		assert.Empty(t, res.Papers["Blockchain"])
		assert.Equal(t, []string{"Blockchain"}, res.NotFound)
		assert.Empty(t, res.Errors, "a keyword without matches is not a failure")
		assert.False(t, res.Failed())
	})

	t.Run("one permanently failing keyword leaves the others intact", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("query") == "k2" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"paperId": "ok"}]}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.GetPapersByKeyword(context.Background(), []string{"k1", "k2", "k3"}, 0)
		require.NoError(t, err, "per-keyword failures are delivered inside the result")

		assert.Len(t, res.Papers["k1"], 1)
		assert.Len(t, res.Papers["k3"], 1)
		assert.Empty(t, res.Papers["k2"])
		require.Contains(t, res.Errors, "k2")
		assert.ErrorIs(t, res.Errors["k2"], domain.ErrServiceUnavailable)
		assert.Empty(t, res.NotFound)
		assert.True(t, res.Failed())
	})

	t.Run("transient failures are retried", func(t *testing.T) {
		var calls atomic.Int64
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"paperId": "ok"}]}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.GetPapersByKeyword(context.Background(), []string{"flaky"}, 0)
		require.NoError(t, err)
		assert.Len(t, res.Papers["flaky"], 1)
		assert.Empty(t, res.Errors)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("duplicate keywords collapse to one entry", func(t *testing.T) {
		var calls atomic.Int64
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"paperId": "ok"}]}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.GetPapersByKeyword(context.Background(), []string{"go", "go", "go"}, 0)
		require.NoError(t, err)
		assert.Len(t, res.Papers, 1)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler(), nil)

		_, err := client.GetPapersByKeyword(context.Background(), nil, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = client.GetPapersByKeyword(context.Background(), []string{"ok"}, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestClient_SearchPapers(t *testing.T) {
	t.Run("exposes the pagination envelope", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			assert.Equal(t, "20", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"total": 55, "offset": 20, "next": 30, "data": [{"paperId": "p1"}]}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.SearchPapers(context.Background(), "graph neural networks",
			SearchOptions{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.Equal(t, 55, res.Total)
		assert.Equal(t, 20, res.Offset)
		assert.Equal(t, 30, res.Next)
		assert.True(t, res.HasMore())
		require.Len(t, res.Papers, 1)
	})

	t.Run("last page has no next offset", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"paperId": "p1"}]}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.SearchPapers(context.Background(), "q", SearchOptions{})
		require.NoError(t, err)
		assert.False(t, res.HasMore())
	})

	t.Run("limits are clamped to the api page ceiling", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"total": 0, "offset": 0, "data": []}`))
		})
		client := newTestClient(t, handler, nil)

		_, err := client.SearchPapers(context.Background(), "q", SearchOptions{Limit: 500})
		require.NoError(t, err)
	})
}

func TestClient_GetPaperByID(t *testing.T) {
	t.Run("returns the detailed record", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/paper/"+shaID, r.URL.Path)
			w.Write([]byte(`{
				"paperId": "` + shaID + `",
				"title": "Attention Is All You Need",
				"publicationDate": "2017-06-12",
				"journal": {"name": "NeurIPS"},
				"citations": [{"paperId": "c1"}],
				"references": [{"paperId": "r1"}, {"paperId": "r2"}]
			}`))
		})
		client := newTestClient(t, handler, nil)

		paper, err := client.GetPaperByID(context.Background(), shaID)
		require.NoError(t, err)
		assert.Equal(t, "Attention Is All You Need", paper.Title)
		assert.Equal(t, "2017-06-12", paper.PublicationDate)
		require.NotNil(t, paper.Journal)
		assert.Equal(t, "NeurIPS", paper.Journal.Name)
		assert.Len(t, paper.Citations, 1)
		assert.Len(t, paper.References, 2)
	})

	t.Run("rejects malformed ids before any request", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}), nil)

		_, err := client.GetPaperByID(context.Background(), "not-a-paper-id")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, calls.Load())
	})

	t.Run("unknown ids surface as not found", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "Paper not found"}`))
		}), nil)

		_, err := client.GetPaperByID(context.Background(), "DOI:10.1234/does.not.exist")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClient_GetPapersByID(t *testing.T) {
	t.Run("splits outcomes across found, missing and failed", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/paper/" + shaID:
				w.Write([]byte(`{"paperId": "` + shaID + `", "title": "Found"}`))
			case "/paper/CorpusId:404404":
				w.WriteHeader(http.StatusNotFound)
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		})
		client := newTestClient(t, handler, nil)

		ids := []string{shaID, "CorpusId:404404", "CorpusId:500500"}
		res, err := client.GetPapersByID(context.Background(), ids)
		require.NoError(t, err)

		require.Contains(t, res.Papers, shaID)
		assert.Equal(t, "Found", res.Papers[shaID].Title)
		assert.Equal(t, []string{"CorpusId:404404"}, res.NotFound)
		require.Contains(t, res.Errors, "CorpusId:500500")
		assert.ErrorIs(t, res.Errors["CorpusId:500500"], domain.ErrServiceUnavailable)
	})

	t.Run("one invalid id fails the whole call up front", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}), nil)

		_, err := client.GetPapersByID(context.Background(), []string{shaID, "bogus"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, calls.Load())
	})
}

func TestClient_GetAuthorByName(t *testing.T) {
	t.Run("orders results by name similarity", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/author/search", r.URL.Path)
			w.Write([]byte(`{"total": 3, "offset": 0, "data": [
				{"authorId": "1", "name": "Robert Hinton"},
				{"authorId": "2", "name": "G. Hinton"},
				{"authorId": "3", "name": "Geoffrey Hinton"}
			]}`))
		})
		client := newTestClient(t, handler, nil)

		authors, err := client.GetAuthorByName(context.Background(), "Geoffrey Hinton")
		require.NoError(t, err)
		require.Len(t, authors, 3)
		assert.Equal(t, "Geoffrey Hinton", authors[0].Name)
		assert.Equal(t, "G. Hinton", authors[1].Name)
		assert.Equal(t, "Robert Hinton", authors[2].Name)
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"total": 0, "offset": 0, "data": []}`))
		}), nil)

		authors, err := client.GetAuthorByName(context.Background(), "Nobody Atall")
		require.NoError(t, err)
		assert.Empty(t, authors)
	})
}

func TestClient_GetAuthorsByName(t *testing.T) {
	t.Run("resolves every name independently", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("query") == "Geoffrey Hinton" {
				w.Write([]byte(`{"total": 1, "offset": 0, "data": [{"authorId": "3", "name": "Geoffrey Hinton"}]}`))
				return
			}
			w.Write([]byte(`{"total": 0, "offset": 0, "data": []}`))
		})
		client := newTestClient(t, handler, nil)

		res, err := client.GetAuthorsByName(context.Background(),
			[]string{"Geoffrey Hinton", "Nobody Atall"})
		require.NoError(t, err)

		require.Len(t, res.Authors, 2)
		assert.Len(t, res.Authors["Geoffrey Hinton"], 1)
		assert.Empty(t, res.Authors["Nobody Atall"])
		assert.Equal(t, []string{"Nobody Atall"}, res.NotFound)
		assert.False(t, res.Failed())
	})
}

func TestClient_GetAuthorByID(t *testing.T) {
	t.Run("returns the author record", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/author/1741101", r.URL.Path)
			w.Write([]byte(`{"authorId": "1741101", "name": "Geoffrey Hinton", "hIndex": 150}`))
		})
		client := newTestClient(t, handler, nil)

		author, err := client.GetAuthorByID(context.Background(), "1741101")
		require.NoError(t, err)
		assert.Equal(t, "Geoffrey Hinton", author.Name)
		assert.Equal(t, 150, author.HIndex)
	})

	t.Run("rejects non-numeric ids before any request", func(t *testing.T) {
		var calls atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}), nil)

		_, err := client.GetAuthorByID(context.Background(), "hinton")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, calls.Load())
	})

	t.Run("unknown ids surface as not found", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}), nil)

		_, err := client.GetAuthorByID(context.Background(), "999999999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClient_GetAuthorsByID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/author/1" {
			w.Write([]byte(`{"authorId": "1", "name": "Known Author"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	client := newTestClient(t, handler, nil)

	res, err := client.GetAuthorsByID(context.Background(), []string{"1", "2"})
	require.NoError(t, err)
	require.Contains(t, res.Authors, "1")
	assert.Equal(t, "Known Author", res.Authors["1"].Name)
	assert.Equal(t, []string{"2"}, res.NotFound)
	assert.Empty(t, res.Errors)
}
