package main

import (
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"discuss/internal/db"
	"discuss/internal/handlers"
	"discuss/internal/middleware"
	"discuss/internal/router"
	"discuss/internal/services"
	"discuss/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	gdb, err := db.Open()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(gdb)

	cache := utils.NewCache()
	forum := services.NewForum(gdb, cache)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("discuss_session", store))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser(gdb))

	// Handlers
	authHandler := handlers.NewAuthHandler(gdb)
	topicHandler := handlers.NewTopicHandler(gdb, forum, cache)
	postHandler := handlers.NewPostHandler(gdb, forum, cache)

	router.RegisterRoutes(r, authHandler, topicHandler, postHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Discuss server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	// FuncMap
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			default:
				return ""
			}

			duration := time.Since(timeVal)
			seconds := int(duration.Seconds())

			if seconds < 60 {
				return fmt.Sprintf("%ds ago", seconds)
			} else if seconds < 3600 {
				return fmt.Sprintf("%dm ago", seconds/60)
			} else if seconds < 86400 {
				return fmt.Sprintf("%dh ago", seconds/3600)
			} else if seconds < 2592000 {
				return fmt.Sprintf("%dd ago", seconds/86400)
			} else if seconds < 31536000 {
				return fmt.Sprintf("%dmo ago", seconds/2592000)
			}
			return fmt.Sprintf("%dy ago", seconds/31536000)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	// Auth
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/signup.html", funcMap, assemble(templatesDir+"/views/auth/signup.html")...)

	// Topic
	r.AddFromFilesFuncs("topic/list.html", funcMap, assemble(templatesDir+"/views/topic/list.html")...)
	r.AddFromFilesFuncs("topic/create.html", funcMap, assemble(templatesDir+"/views/topic/create.html")...)

	// Post
	r.AddFromFilesFuncs("post/list.html", funcMap, assemble(templatesDir+"/views/post/list.html")...)
	r.AddFromFilesFuncs("post/detail.html", funcMap, assemble(templatesDir+"/views/post/detail.html")...)
	r.AddFromFilesFuncs("post/create.html", funcMap, assemble(templatesDir+"/views/post/create.html")...)
	r.AddFromFilesFuncs("post/edit.html", funcMap, assemble(templatesDir+"/views/post/edit.html")...)

	// Search
	r.AddFromFilesFuncs("search.html", funcMap, assemble(templatesDir+"/views/search.html")...)

	// Error
	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
