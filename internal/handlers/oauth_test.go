package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"discuss/internal/db"
	"discuss/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	r := gin.New()
	r.Use(sessions.Sessions("discuss_session", cookie.NewStore([]byte("test-secret"))))
	r.SetHTMLTemplate(template.Must(template.New("auth/login.html").Parse(
		`{{if .Error}}error: {{.Error}}{{end}}`)))

	h := &AuthHandler{db: gdb, oauth: newGoogleOAuthConfig()}
	r.GET("/auth/google", h.GoogleLogin)
	r.GET("/auth/google/callback", h.GoogleCallback)
	return h, gdb, r
}

// stubGoogle serves the token and userinfo endpoints locally and rewires
// the handler's config to them.
func stubGoogle(t *testing.T, h *AuthHandler, info GoogleUserInfo) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}

	prev := googleUserInfoURL
	googleUserInfoURL = srv.URL + "/userinfo"
	t.Cleanup(func() { googleUserInfoURL = prev })
}

// startOAuthFlow hits the login route and returns the state parameter it
// generated along with the session cookie carrying it.
func startOAuthFlow(t *testing.T, r *gin.Engine) (string, []*http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("state"), w.Result().Cookies()
}

func callbackRequest(state string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet,
		"/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return req
}

func TestGoogleCallbackProvisionsAccount(t *testing.T) {
	h, gdb, r := newTestAuthHandler(t)
	stubGoogle(t, h, GoogleUserInfo{
		ID:            "g-123",
		Email:         "alice@example.com",
		VerifiedEmail: true,
		GivenName:     "alice",
		Picture:       "https://example.com/alice.png",
	})

	state, cookies := startOAuthFlow(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, callbackRequest(state, cookies))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var user models.User
	require.NoError(t, gdb.Where("google_id = ?", "g-123").First(&user).Error)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.GoogleEmail)
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	h, _, r := newTestAuthHandler(t)
	stubGoogle(t, h, GoogleUserInfo{ID: "g-123", Email: "alice@example.com", VerifiedEmail: true})

	_, cookies := startOAuthFlow(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, callbackRequest("forged-state", cookies))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid state parameter")
}

func TestGoogleCallbackLinkFailureRendersError(t *testing.T) {
	h, gdb, r := newTestAuthHandler(t)
	stubGoogle(t, h, GoogleUserInfo{ID: "g-456", Email: "bob@example.com", VerifiedEmail: true})

	bob := &models.User{Username: "bob", Email: "bob@example.com", Password: "hashed"}
	require.NoError(t, gdb.Create(bob).Error)

	// Make the account-linking update fail at the database
	require.NoError(t, gdb.Callback().Update().Before("gorm:update").Register("reject_updates", func(tx *gorm.DB) {
		tx.AddError(errors.New("update rejected"))
	}))

	state, cookies := startOAuthFlow(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, callbackRequest(state, cookies))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to link account")

	var reloaded models.User
	require.NoError(t, gdb.First(&reloaded, bob.ID).Error)
	assert.Empty(t, reloaded.GoogleID)
}
