// Package services holds the write operations of the forum. Every mutation
// runs the same stages in the same order: validate the form input, check
// the caller is signed in, check ownership where the operation requires
// it, perform the single storage write, then drop the cache keys the write
// made stale. The outcome is always a (Result, forms.Errors) pair; an
// empty error map is the only success signal, and nothing is retried.
package services

import (
	"errors"
	"fmt"

	"discuss/internal/forms"
	"discuss/internal/models"
	"discuss/internal/utils"

	"gorm.io/gorm"
)

// Forum executes the five write operations against the injected database
// handle and invalidates the shared page cache on success.
type Forum struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewForum(gdb *gorm.DB, cache *utils.Cache) *Forum {
	return &Forum{db: gdb, cache: cache}
}

// Result carries the navigation target of a successful mutation. Location
// is empty for operations that stay on the current page (comments).
type Result struct {
	Location string
}

// Cache keys shared between the services (which delete them) and the
// handlers (which populate them).

func TopicIndexKey() string {
	return "topic:index"
}

func TopicListingKey(slug string, page int) string {
	return fmt.Sprintf("topic:%s:page:%d", slug, page)
}

func PostDetailKey(pid string) string {
	return fmt.Sprintf("post:detail:%s", pid)
}

// storageError folds a database failure into the form-level channel,
// keeping the driver's message when it has one.
func storageError(err error) forms.Errors {
	if err == nil || err.Error() == "" {
		return forms.FormError("Something went wrong")
	}
	return forms.FormError(err.Error())
}

// CreateTopic creates a new immutable topic. Any signed-in user may create
// one; slugs are unique across the site.
func (f *Forum) CreateTopic(user *models.User, slug, description string) (Result, forms.Errors) {
	form := forms.TopicForm{Slug: slug, Description: description}
	if errs := form.Validate(); errs.HasErrors() {
		return Result{}, errs
	}

	if user == nil {
		return Result{}, forms.FormError("You must be signed in to do this")
	}

	var existing models.Topic
	if err := f.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		errs := forms.Errors{}
		errs.Add("slug", "A topic with this name already exists")
		return Result{}, errs
	}

	topic := models.Topic{
		Slug:        slug,
		Description: description,
	}
	if err := f.db.Create(&topic).Error; err != nil {
		return Result{}, storageError(err)
	}

	f.cache.Delete(TopicIndexKey())

	return Result{Location: "/t/" + topic.Slug}, forms.Errors{}
}

// CreatePost publishes a post under the topic identified by slug.
func (f *Forum) CreatePost(user *models.User, topicSlug, title, content string) (Result, forms.Errors) {
	form := forms.PostForm{Title: title, Content: content}
	if errs := form.Validate(); errs.HasErrors() {
		return Result{}, errs
	}

	if user == nil {
		return Result{}, forms.FormError("You must be signed in to do this")
	}

	var topic models.Topic
	if err := f.db.Where("slug = ?", topicSlug).First(&topic).Error; err != nil {
		return Result{}, forms.FormError("Topic not found")
	}

	post := models.Post{
		Pid:     utils.RandStringBytesMaskImpr(8),
		UserID:  user.ID,
		TopicID: topic.ID,
		Title:   title,
		Content: content, // Raw markdown; rendered at display time
	}
	if err := f.db.Create(&post).Error; err != nil {
		return Result{}, storageError(err)
	}

	f.cache.Delete(TopicListingKey(topic.Slug, 1))
	f.cache.Delete(TopicIndexKey()) // index shows per-topic post counts

	return Result{Location: "/p/" + post.Pid}, forms.Errors{}
}

// UpdatePost changes the title and content of a post. Only the author may
// edit; concurrent editors race at the database and the last write wins.
func (f *Forum) UpdatePost(user *models.User, pid, title, content string) (Result, forms.Errors) {
	form := forms.PostForm{Title: title, Content: content}
	if errs := form.Validate(); errs.HasErrors() {
		return Result{}, errs
	}

	if user == nil {
		return Result{}, forms.FormError("You must be signed in to do this")
	}

	var post models.Post
	if err := f.db.Preload("Topic").Where("pid = ?", pid).First(&post).Error; err != nil {
		return Result{}, forms.FormError("Post not found")
	}
	if post.UserID != user.ID {
		return Result{}, forms.FormError("You do not have permission to edit this post")
	}

	post.Title = title
	post.Content = content
	if err := f.db.Save(&post).Error; err != nil {
		return Result{}, storageError(err)
	}

	f.cache.Delete(PostDetailKey(post.Pid))
	f.cache.Delete(TopicListingKey(post.Topic.Slug, 1))

	return Result{Location: "/p/" + post.Pid}, forms.Errors{}
}

// DeletePost removes a post and all of its comments in one transaction.
// Only the author may delete.
func (f *Forum) DeletePost(user *models.User, pid string) (Result, forms.Errors) {
	if user == nil {
		return Result{}, forms.FormError("You must be signed in to do this")
	}

	var post models.Post
	if err := f.db.Preload("Topic").Where("pid = ?", pid).First(&post).Error; err != nil {
		return Result{}, forms.FormError("Post not found")
	}
	if post.UserID != user.ID {
		return Result{}, forms.FormError("You do not have permission to delete this post")
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return Result{}, storageError(err)
	}

	f.cache.Delete(PostDetailKey(post.Pid))
	f.cache.Delete(TopicListingKey(post.Topic.Slug, 1))
	f.cache.Delete(TopicIndexKey())

	return Result{Location: "/t/" + post.Topic.Slug}, forms.Errors{}
}

// CreateComment attaches a comment to the post identified by pid,
// optionally nested under parentID. The parent must be a comment of the
// same post; replying across posts is rejected. Comments do not navigate
// anywhere on success, the caller stays on the detail page.
func (f *Forum) CreateComment(user *models.User, pid, content string, parentID *uint) (Result, forms.Errors) {
	form := forms.CommentForm{Content: content}
	if errs := form.Validate(); errs.HasErrors() {
		return Result{}, errs
	}

	if user == nil {
		return Result{}, forms.FormError("You must be signed in to do this")
	}

	var post models.Post
	if err := f.db.Where("pid = ?", pid).First(&post).Error; err != nil {
		return Result{}, forms.FormError("Post not found")
	}

	if parentID != nil {
		var parent models.Comment
		err := f.db.First(&parent, *parentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.PostID != post.ID) {
			return Result{}, forms.FormError("Parent comment not found")
		}
		if err != nil {
			return Result{}, storageError(err)
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: parentID,
		Content:  content,
	}
	if err := f.db.Create(&comment).Error; err != nil {
		return Result{}, storageError(err)
	}

	f.cache.Delete(PostDetailKey(post.Pid))

	return Result{}, forms.Errors{}
}
