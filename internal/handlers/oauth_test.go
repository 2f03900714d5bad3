package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-authgate/stravaexport/internal/metrics"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/sink"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupOAuthRouter builds a router with cookie sessions and the consent
// flow routes backed by a fake Strava server.
func setupOAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := newTestProvider(newFakeStravaServer(t, false))
	svc := services.NewExportService(
		provider,
		sink.NewFileSink(t.TempDir()),
		nil,
		metrics.NewNoopMetrics(),
	)
	h := NewOAuthHandler(provider, NewExportHandler(svc))

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/auth/strava/login", h.Login)
	r.GET("/auth/strava/callback", h.Callback)
	return r
}

func sessionCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	resp := http.Response{Header: w.Header()}
	return resp.Cookies()
}

func getWithCookies(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login performs the login redirect and returns the state and session cookies
func login(t *testing.T, r *gin.Engine) (string, []*http.Cookie) {
	t.Helper()
	w := getWithCookies(r, "/auth/strava/login", nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", location.Path)

	query := location.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "12345", query.Get("client_id"))
	assert.Equal(t, "http://localhost:3000/redirect", query.Get("redirect_uri"))
	require.NotEmpty(t, query.Get("state"))

	return query.Get("state"), sessionCookies(w)
}

func TestLogin_RedirectsWithState(t *testing.T) {
	r := setupOAuthRouter(t)
	state1, cookies := login(t, r)
	state2, _ := login(t, r)

	assert.NotEmpty(t, cookies)
	assert.NotEqual(t, state1, state2)
}

func TestCallback_RunsExport(t *testing.T) {
	r := setupOAuthRouter(t)
	state, cookies := login(t, r)

	w := getWithCookies(r, "/auth/strava/callback?code="+testCode+"&state="+state, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Data received!", resp["message"])
	assert.Equal(t, "tok", resp["accessToken"])
	assert.Equal(t, true, resp["persisted"])

	// State is consumed by the first callback
	w = getWithCookies(r, "/auth/strava/callback?code="+testCode+"&state="+state, sessionCookies(w))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_StateMismatch(t *testing.T) {
	r := setupOAuthRouter(t)
	_, cookies := login(t, r)

	w := getWithCookies(r, "/auth/strava/callback?code="+testCode+"&state=forged", cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = getWithCookies(r, "/auth/strava/callback?code="+testCode+"&state=anything", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_AccessDenied(t *testing.T) {
	r := setupOAuthRouter(t)
	state, cookies := login(t, r)

	w := getWithCookies(r, "/auth/strava/callback?error=access_denied&state="+state, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Authorization was denied."}`, w.Body.String())
}

func TestCallback_MissingCode(t *testing.T) {
	r := setupOAuthRouter(t)
	state, cookies := login(t, r)

	w := getWithCookies(r, "/auth/strava/callback?state="+state, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_ExchangeFailure(t *testing.T) {
	r := setupOAuthRouter(t)
	state, cookies := login(t, r)

	w := getWithCookies(r, "/auth/strava/callback?code=wrong&state="+state, cookies)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An error occurred while processing the data."}`, w.Body.String())
}
