package handlers

import (
	"log"
	"net/http"

	"github.com/go-authgate/stravaexport/internal/strava"
	"github.com/go-authgate/stravaexport/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionOAuthState = "strava_oauth_state"

// OAuthHandler drives the Strava consent flow for browsers that do not
// post the code themselves.
type OAuthHandler struct {
	provider *strava.Provider
	export   *ExportHandler
}

func NewOAuthHandler(provider *strava.Provider, export *ExportHandler) *OAuthHandler {
	return &OAuthHandler{
		provider: provider,
		export:   export,
	}
}

// Login stores a fresh state in the session and redirects to Strava
func (h *OAuthHandler) Login(c *gin.Context) {
	state, err := util.RandomState(32)
	if err != nil {
		log.Printf("[OAuth] Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate login."})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionOAuthState, state)
	if err := session.Save(); err != nil {
		log.Printf("[OAuth] Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session."})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

// Callback verifies state and runs the export for the returned code
func (h *OAuthHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		log.Printf("[OAuth] Authorization not granted: %s", errParam)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization was denied."})
		return
	}

	session := sessions.Default(c)
	savedState, _ := session.Get(sessionOAuthState).(string)
	if savedState == "" || c.Query("state") != savedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state. Please try again."})
		return
	}

	// State is single use
	session.Delete(sessionOAuthState)
	if err := session.Save(); err != nil {
		log.Printf("[OAuth] Failed to clear session state: %v", err)
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code."})
		return
	}

	h.export.runExport(c, code)
}
