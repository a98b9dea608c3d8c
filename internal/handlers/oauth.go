package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"discuss/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// newGoogleOAuthConfig builds the Google OAuth config from env vars.
func newGoogleOAuthConfig() *oauth2.Config {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  siteURL + "/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo is the profile returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// googleUserInfoURL is a var so tests can point it at a stub server.
var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin starts the Google OAuth flow.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate state token")
		return
	}

	// Keep the state in the session to verify the callback
	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	url := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth redirect back from Google.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get("oauth_state")

	if savedState == nil || c.Query("state") != savedState.(string) {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Error": "Invalid state parameter"})
		return
	}

	session.Delete("oauth_state")
	session.Save()

	code := c.Query("code")
	if code == "" {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Error": "Missing authorization code"})
		return
	}

	token, err := h.oauth.Exchange(context.Background(), code)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "Failed to exchange access token"})
		return
	}

	userInfo, err := h.getGoogleUserInfo(token.AccessToken)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "Failed to fetch user info"})
		return
	}

	if !userInfo.VerifiedEmail {
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Error": "Google email is not verified"})
		return
	}

	// Look up by GoogleID first, then by email for accounts that signed
	// up with a password before linking Google.
	var user models.User
	err = h.db.Where("google_id = ?", userInfo.ID).Or("email = ?", userInfo.Email).First(&user).Error

	if err != nil {
		// First login via Google, provision an account
		username := userInfo.GivenName
		if username == "" {
			username = strings.Split(userInfo.Email, "@")[0]
		}

		// The GoogleID doubles as the initial password so the user can
		// set a real one later.
		newUser, err := h.createUser(username, userInfo.Email, userInfo.ID)
		if err != nil {
			Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "Failed to create account"})
			return
		}

		newUser.GoogleID = userInfo.ID
		newUser.GoogleEmail = userInfo.Email
		newUser.Avatar = userInfo.Picture
		if err := h.db.Save(newUser).Error; err != nil {
			Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "Failed to create account"})
			return
		}

		user = *newUser
	} else if user.GoogleID == "" {
		// Existing account, link Google on first OAuth login
		user.GoogleID = userInfo.ID
		user.GoogleEmail = userInfo.Email
		if err := h.db.Save(&user).Error; err != nil {
			Render(c, http.StatusInternalServerError, "auth/login.html", gin.H{"Error": "Failed to link account"})
			return
		}
	}

	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) getGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get(googleUserInfoURL + "?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
