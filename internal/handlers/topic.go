package handlers

import (
	"net/http"
	"time"

	"discuss/internal/middleware"
	"discuss/internal/models"
	"discuss/internal/services"
	"discuss/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TopicHandler struct {
	db    *gorm.DB
	forum *services.Forum
	cache *utils.Cache
}

func NewTopicHandler(gdb *gorm.DB, forum *services.Forum, cache *utils.Cache) *TopicHandler {
	return &TopicHandler{db: gdb, forum: forum, cache: cache}
}

// List shows every topic with its post count.
func (h *TopicHandler) List(c *gin.Context) {
	cacheKey := services.TopicIndexKey()
	if cachedData := h.cache.Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "topic/list.html", hData)
			return
		}
	}

	var topics []models.Topic
	h.db.Order("slug ASC").Find(&topics)

	// Post counts per topic in one query
	type countResult struct {
		TopicID uint
		Count   int
	}
	var results []countResult
	h.db.Model(&models.Post{}).
		Select("topic_id, COUNT(*) as count").
		Group("topic_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.TopicID] = r.Count
	}

	type topicRow struct {
		models.Topic
		PostCount int
	}
	rows := make([]topicRow, len(topics))
	for i, t := range topics {
		rows[i] = topicRow{Topic: t, PostCount: countMap[t.ID]}
	}

	renderData := gin.H{
		"Topics": rows,
		"Title":  "Topics",
		"Active": "topics",
	}

	h.cache.Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "topic/list.html", renderData)
}

func (h *TopicHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "topic/create.html", gin.H{
		"Title": "New Topic",
	})
}

func (h *TopicHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	slug := c.PostForm("slug")
	description := c.PostForm("description")

	result, errs := h.forum.CreateTopic(user, slug, description)
	if errs.HasErrors() {
		Render(c, http.StatusBadRequest, "topic/create.html", gin.H{
			"Title":       "New Topic",
			"Errors":      errs,
			"Slug":        slug,
			"Description": description,
		})
		return
	}

	c.Redirect(http.StatusFound, result.Location)
}
