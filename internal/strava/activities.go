package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-authgate/stravaexport/internal/models"

	"golang.org/x/oauth2"
)

// PerPage is the page size requested from the activities endpoint.
const PerPage = 200

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 4096

// ActivityIterator walks the athlete's activities page by page.
// Pages are fetched one at a time, starting at page 1, until an empty page
// is returned or a request fails. It is not safe for concurrent use.
type ActivityIterator struct {
	client  *http.Client
	baseURL string

	page    int
	fetched int
	buf     []models.Activity
	current models.Activity
	done    bool
	err     error
}

// Activities returns an iterator over the activities visible to accessToken.
func (p *Provider) Activities(ctx context.Context, accessToken string) *ActivityIterator {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	return &ActivityIterator{
		client:  oauth2.NewClient(p.clientContext(ctx), ts),
		baseURL: p.apiBaseURL,
		page:    1,
	}
}

// Next advances to the next activity, fetching a new page when needed.
// It returns false when the listing is exhausted or a fetch failed; check Err.
func (it *ActivityIterator) Next(ctx context.Context) bool {
	for len(it.buf) == 0 {
		if it.done {
			return false
		}

		batch, err := it.fetchPage(ctx, it.page)
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		if len(batch) == 0 {
			log.Printf("[Strava] No more activities after %d page(s)", it.fetched)
			it.done = true
			return false
		}

		log.Printf("[Strava] Processed page %d (%d activities)", it.page, len(batch))
		it.buf = batch
		it.fetched++
		it.page++
	}

	it.current = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Activity returns the activity at the current position.
func (it *ActivityIterator) Activity() models.Activity {
	return it.current
}

// Err returns the error that stopped iteration, if any.
func (it *ActivityIterator) Err() error {
	return it.err
}

// Pages returns the number of non-empty pages fetched so far.
func (it *ActivityIterator) Pages() int {
	return it.fetched
}

func (it *ActivityIterator) fetchPage(ctx context.Context, page int) ([]models.Activity, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(PerPage))
	endpoint := it.baseURL + "/athlete/activities?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrActivitiesFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := it.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrActivitiesFetch, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Printf("[Strava] Activities page %d failed: status=%d body=%s", page, resp.StatusCode, body)
		return nil, fmt.Errorf(
			"%w: page %d: unexpected status %s",
			ErrActivitiesFetch,
			page,
			resp.Status,
		)
	}

	var batch []models.Activity
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: page %d: failed to decode: %w", ErrActivitiesFetch, page, err)
	}
	return batch, nil
}
