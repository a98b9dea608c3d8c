package handlers

import (
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"discuss/internal/comments"
	"discuss/internal/forms"
	"discuss/internal/middleware"
	"discuss/internal/models"
	"discuss/internal/services"
	"discuss/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	db    *gorm.DB
	forum *services.Forum
	cache *utils.Cache
}

func NewPostHandler(gdb *gorm.DB, forum *services.Forum, cache *utils.Cache) *PostHandler {
	return &PostHandler{db: gdb, forum: forum, cache: cache}
}

// fillCommentCounts batch-fills the comment count of each post.
func (h *PostHandler) fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	h.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

func pageParam(c *gin.Context) int {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	return page
}

// ListByTopic shows the posts of one topic, newest first.
func (h *PostHandler) ListByTopic(c *gin.Context) {
	slug := c.Param("slug")

	var topic models.Topic
	if err := h.db.Where("slug = ?", slug).First(&topic).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Topic not found")
		return
	}

	page := pageParam(c)

	cacheKey := services.TopicListingKey(topic.Slug, page)
	if cachedData := h.cache.Get(cacheKey); cachedData != nil {
		if hData, ok := cachedData.(gin.H); ok {
			Render(c, http.StatusOK, "post/list.html", hData)
			return
		}
	}

	perPage := 30
	offset := (page - 1) * perPage

	var total int64
	h.db.Model(&models.Post{}).Where("topic_id = ?", topic.ID).Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	h.db.Preload("User").Preload("Topic").
		Where("topic_id = ?", topic.ID).
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts)

	h.fillCommentCounts(posts)

	renderData := gin.H{
		"Topic":       topic,
		"Posts":       posts,
		"Title":       topic.Slug,
		"Active":      "topics",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	}

	h.cache.Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "post/list.html", renderData)
}

// commentView is one node of the rendered reply tree.
type commentView struct {
	models.Comment
	PostPid     string
	ContentHTML template.HTML
	Children    []*commentView
}

// buildCommentViews renders each node's markdown and mirrors the tree
// shape for the recursive template.
func buildCommentViews(nodes []*comments.Node, postPid string) []*commentView {
	views := make([]*commentView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, &commentView{
			Comment:     n.Comment,
			PostPid:     postPid,
			ContentHTML: utils.RenderMarkdown(n.Comment.Content),
			Children:    buildCommentViews(n.Children, postPid),
		})
	}
	return views
}

// Detail shows a post with its threaded comments.
func (h *PostHandler) Detail(c *gin.Context) {
	pid := c.Param("pid")
	h.renderDetail(c, pid, nil)
}

// renderDetail is shared between Detail and a failed comment submission,
// which re-renders the page with the comment form errors attached.
func (h *PostHandler) renderDetail(c *gin.Context, pid string, commentErrs forms.Errors) {
	cacheKey := services.PostDetailKey(pid)
	if commentErrs == nil {
		if cachedData := h.cache.Get(cacheKey); cachedData != nil {
			if hData, ok := cachedData.(gin.H); ok {
				Render(c, http.StatusOK, "post/detail.html", hData)
				return
			}
		}
	}

	var post models.Post
	if err := h.db.Preload("User").Preload("Topic").Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	var commentList []models.Comment
	h.db.Preload("User").Where("post_id = ?", post.ID).Order("created_at ASC").Find(&commentList)

	tree := buildCommentViews(comments.Build(commentList), post.Pid)

	renderData := gin.H{
		"Post":         post,
		"PostContent":  utils.RenderMarkdown(post.Content),
		"Comments":     tree,
		"CommentCount": len(commentList),
		"Title":        post.Title,
	}

	if commentErrs != nil {
		renderData["CommentErrors"] = commentErrs
		Render(c, http.StatusBadRequest, "post/detail.html", renderData)
		return
	}

	h.cache.Set(cacheKey, renderData, 5*time.Minute)

	Render(c, http.StatusOK, "post/detail.html", renderData)
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	slug := c.Param("slug")

	var topic models.Topic
	if err := h.db.Where("slug = ?", slug).First(&topic).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Topic not found")
		return
	}

	Render(c, http.StatusOK, "post/create.html", gin.H{
		"Title": "New Post",
		"Topic": topic,
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	slug := c.Param("slug")

	title := c.PostForm("title")
	content := c.PostForm("content")

	result, errs := h.forum.CreatePost(user, slug, title, content)
	if errs.HasErrors() {
		var topic models.Topic
		h.db.Where("slug = ?", slug).First(&topic)
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{
			"Title":       "New Post",
			"Topic":       topic,
			"Errors":      errs,
			"PostTitle":   title,
			"PostContent": content,
		})
		return
	}

	c.Redirect(http.StatusFound, result.Location)
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	pid := c.Param("pid")

	var post models.Post
	if err := h.db.Preload("Topic").Where("pid = ?", pid).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	if user == nil || post.UserID != user.ID {
		RenderError(c, http.StatusForbidden, "You do not have permission to edit this post")
		return
	}

	Render(c, http.StatusOK, "post/edit.html", gin.H{
		"Title": "Edit Post",
		"Post":  post,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	pid := c.Param("pid")

	title := c.PostForm("title")
	content := c.PostForm("content")

	result, errs := h.forum.UpdatePost(user, pid, title, content)
	if errs.HasErrors() {
		var post models.Post
		if err := h.db.Preload("Topic").Where("pid = ?", pid).First(&post).Error; err != nil {
			RenderError(c, http.StatusNotFound, "Post not found")
			return
		}
		post.Title = title
		post.Content = content
		Render(c, http.StatusBadRequest, "post/edit.html", gin.H{
			"Title":  "Edit Post",
			"Post":   post,
			"Errors": errs,
		})
		return
	}

	c.Redirect(http.StatusFound, result.Location)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	pid := c.Param("pid")

	result, errs := h.forum.DeletePost(user, pid)
	if errs.HasErrors() {
		msg := "Something went wrong"
		if form := errs.Form(); len(form) > 0 {
			msg = form[0]
		}
		code := http.StatusForbidden
		if msg == "Post not found" {
			code = http.StatusNotFound
		}
		RenderError(c, code, msg)
		return
	}

	c.Redirect(http.StatusFound, result.Location)
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	pid := c.Param("pid")

	content := c.PostForm("content")
	var parentID *uint
	if raw := c.PostForm("parent_id"); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			h.renderDetail(c, pid, forms.FormError("Parent comment not found"))
			return
		}
		id := uint(id64)
		parentID = &id
	}

	_, errs := h.forum.CreateComment(user, pid, content, parentID)
	if errs.HasErrors() {
		h.renderDetail(c, pid, errs)
		return
	}

	c.Redirect(http.StatusFound, "/p/"+pid)
}

// Search matches posts by title or content.
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")

	var posts []models.Post
	if query != "" {
		searchPattern := "%" + query + "%"
		h.db.Preload("User").Preload("Topic").
			Where("title ILIKE ? OR content ILIKE ?", searchPattern, searchPattern).
			Order("created_at DESC").
			Limit(50).
			Find(&posts)
	}

	h.fillCommentCounts(posts)

	Render(c, http.StatusOK, "search.html", gin.H{
		"Posts":  posts,
		"Query":  query,
		"Title":  "Search",
		"Active": "search",
	})
}
