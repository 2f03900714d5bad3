package strava

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-authgate/stravaexport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeActivities serves pages from a fixed list; a nil entry answers 500.
type fakeActivities struct {
	mu       sync.Mutex
	pages    [][]map[string]any
	requests []string
	auth     []string
}

func (f *fakeActivities) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.URL.RawQuery)
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	var page int
	_, _ = fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
	if page < 1 || page > len(f.pages) {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	if f.pages[page-1] == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
		return
	}
	writeJSON(w, http.StatusOK, f.pages[page-1])
}

func activity(name string) map[string]any {
	return map[string]any{
		"name":                 name,
		"distance":             1609.34,
		"start_date":           "2024-01-01T10:00:00Z",
		"total_elevation_gain": 10,
		"moving_time":          600,
		"has_heartrate":        false,
	}
}

func drain(ctx context.Context, it *ActivityIterator) []models.Activity {
	var out []models.Activity
	for it.Next(ctx) {
		out = append(out, it.Activity())
	}
	return out
}

func TestActivities_Pagination(t *testing.T) {
	fake := &fakeActivities{pages: [][]map[string]any{
		{activity("a"), activity("b")},
		{activity("c")},
	}}
	mux := http.NewServeMux()
	mux.Handle("/api/v3/athlete/activities", fake)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	it := newTestProvider(t, srv).Activities(ctx, "tok")
	got := drain(ctx, it)

	require.NoError(t, it.Err())
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[2].Name)
	require.NotNil(t, got[0].Distance)
	assert.InDelta(t, 1609.34, *got[0].Distance, 1e-9)
	assert.Equal(t, 2, it.Pages())

	// Pages 1..3 requested in order with the fixed page size; the third is empty.
	assert.Equal(t, []string{
		"page=1&per_page=200",
		"page=2&per_page=200",
		"page=3&per_page=200",
	}, fake.requests)
	for _, h := range fake.auth {
		assert.Equal(t, "Bearer tok", h)
	}

	// Exhausted iterators stay exhausted without new requests.
	assert.False(t, it.Next(ctx))
	assert.Len(t, fake.requests, 3)
}

func TestActivities_EmptyFirstPage(t *testing.T) {
	fake := &fakeActivities{}
	mux := http.NewServeMux()
	mux.Handle("/api/v3/athlete/activities", fake)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	it := newTestProvider(t, srv).Activities(ctx, "tok")

	assert.Empty(t, drain(ctx, it))
	assert.NoError(t, it.Err())
	assert.Equal(t, 0, it.Pages())
	assert.Len(t, fake.requests, 1)
}

func TestActivities_ErrorStopsIteration(t *testing.T) {
	fake := &fakeActivities{pages: [][]map[string]any{
		{activity("a")},
		nil,
		{activity("never")},
	}}
	mux := http.NewServeMux()
	mux.Handle("/api/v3/athlete/activities", fake)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	it := newTestProvider(t, srv).Activities(ctx, "tok")
	got := drain(ctx, it)

	// Activities already yielded are not rolled back.
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	require.Error(t, it.Err())
	assert.ErrorIs(t, it.Err(), ErrActivitiesFetch)
	assert.Len(t, fake.requests, 2, "no page is requested after a failure")
}

func TestActivities_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"not": "a list"})
	}))
	defer srv.Close()

	ctx := context.Background()
	it := newTestProvider(t, srv).Activities(ctx, "tok")

	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), ErrActivitiesFetch)
}

func TestActivities_HeartrateFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		a := activity("hr")
		a["has_heartrate"] = true
		a["average_heartrate"] = 150.5
		a["max_heartrate"] = 180
		writeJSON(w, http.StatusOK, []any{a})
	}))
	defer srv.Close()

	ctx := context.Background()
	got := drain(ctx, newTestProvider(t, srv).Activities(ctx, "tok"))

	require.Len(t, got, 1)
	assert.True(t, got[0].HasHeartrate)
	require.NotNil(t, got[0].AverageHeartrate)
	require.NotNil(t, got[0].MaxHeartrate)
	assert.InDelta(t, 150.5, *got[0].AverageHeartrate, 1e-9)
	assert.InDelta(t, 180.0, *got[0].MaxHeartrate, 1e-9)
}
