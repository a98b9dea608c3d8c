package handlers

import (
	"net/http"
	"strings"

	"discuss/internal/models"
	"discuss/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db    *gorm.DB
	oauth *oauth2.Config
}

func NewAuthHandler(gdb *gorm.DB) *AuthHandler {
	return &AuthHandler{
		db:    gdb,
		oauth: newGoogleOAuthConfig(),
	}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", nil)
}

// createUser creates a new account with a hashed password.
func (h *AuthHandler) createUser(username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (h *AuthHandler) Signup(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	// Extract username from email
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Error": "Invalid email address"})
		return
	}
	username := parts[0]

	if len(password) < 6 {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Error": "Password must be at least 6 characters"})
		return
	}

	user, err := h.createUser(username, email, password)
	if err != nil {
		Render(c, http.StatusConflict, "auth/signup.html", gin.H{"Error": "Email is already registered"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password"})
		return
	}

	if !utils.CheckPassword(user.Password, password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Wrong email or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete("user_id")
	session.Save()

	c.Redirect(http.StatusFound, "/")
}
