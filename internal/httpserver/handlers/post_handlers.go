package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"corpsite/internal/auth"
	"corpsite/internal/models"
	"corpsite/internal/service"
)

type createPostReq struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	FileURL []string `json:"fileUrl"`
}

// CreatePost assigns the next sequential number inside the insert
// transaction; the unique index on number turns a concurrent assignment into
// a rollback instead of a silent duplicate.
func CreatePost(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == "" || req.Content == "" {
			respondError(w, http.StatusBadRequest, "title and content are required")
			return
		}
		var createdBy *string
		if name := auth.Username(r.Context()); name != "" {
			createdBy = &name
		}
		post := models.Post{
			Title:     req.Title,
			Content:   req.Content,
			FileURL:   req.FileURL,
			CreatedBy: createdBy,
		}
		err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
			var max int
			if err := tx.Model(&models.Post{}).Select("COALESCE(MAX(number), 0)").Scan(&max).Error; err != nil {
				return err
			}
			post.Number = max + 1
			return tx.Create(&post).Error
		})
		if err != nil {
			lg.Errorw("create post failed", "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"message": "post created",
			"post":    post,
		})
	}
}

func ListPosts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var posts []models.Post
		if err := db.WithContext(r.Context()).Order("created_at desc").Find(&posts).Error; err != nil {
			lg.Errorw("list posts failed", "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusOK, posts)
	}
}

// GetPost returns a post and, for identified callers only, records the view
// through the dedup ledger before responding with the refreshed counter.
func GetPost(db *gorm.DB, views *service.Views, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid post id")
			return
		}
		var post models.Post
		if err := db.WithContext(r.Context()).First(&post, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "post not found")
				return
			}
			lg.Errorw("get post failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		username := auth.Username(r.Context())
		if username == "" {
			respondJSON(w, http.StatusOK, post)
			return
		}
		var userAgent *string
		if ua := r.UserAgent(); ua != "" {
			userAgent = &ua
		}
		isNew, err := views.Record(r.Context(), post.ID, username, userAgent)
		if err != nil {
			lg.Errorw("record view failed", "postId", post.ID, "username", username, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		if isNew {
			post.Views++
		}
		respondJSON(w, http.StatusOK, post)
	}
}

type updatePostReq struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	FileURL *[]string `json:"fileUrl"`
}

// UpdatePost writes only the supplied columns so a concurrent view-count
// increment is never overwritten by a stale full-record save.
func UpdatePost(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid post id")
			return
		}
		var req updatePostReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updates := map[string]any{"updated_at": time.Now()}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.FileURL != nil {
			updates["file_url"] = models.StringArray(*req.FileURL)
		}
		if name := auth.Username(r.Context()); name != "" {
			updates["updated_by"] = name
		}
		res := db.WithContext(r.Context()).Model(&models.Post{}).
			Where("id = ?", uint(id)).Updates(updates)
		if res.Error != nil {
			lg.Errorw("update post failed", "id", id, "error", res.Error)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		if res.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "post not found")
			return
		}
		var post models.Post
		if err := db.WithContext(r.Context()).First(&post, uint(id)).Error; err != nil {
			lg.Errorw("get post failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"message": "post updated", "post": post})
	}
}

func DeletePost(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid post id")
			return
		}
		res := db.WithContext(r.Context()).Delete(&models.Post{}, uint(id))
		if res.Error != nil {
			lg.Errorw("delete post failed", "id", id, "error", res.Error)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		if res.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "post not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
	}
}

type viewLogEntry struct {
	PostID    uint      `json:"postId,omitempty"`
	Username  string    `json:"username"`
	UserAgent *string   `json:"userAgent,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewLogEntryFrom(l models.PostViewLog) viewLogEntry {
	e := viewLogEntry{Username: l.Username, UserAgent: l.UserAgent, CreatedAt: l.CreatedAt}
	if l.UserAgent != nil {
		ua := user_agent.New(*l.UserAgent)
		name, version := ua.Browser()
		if name != "" {
			e.Browser = name + " " + version
		}
		e.OS = ua.OS()
	}
	return e
}

// PostViewLogs lists who viewed a post, newest first, with the stored user
// agent broken down into browser and OS for the admin screen.
func PostViewLogs(db *gorm.DB, views *service.Views, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid post id")
			return
		}
		var post models.Post
		if err := db.WithContext(r.Context()).First(&post, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "post not found")
				return
			}
			lg.Errorw("get post failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		logs, err := views.Logs(r.Context(), post.ID, limit, offset)
		if err != nil {
			lg.Errorw("list view logs failed", "postId", post.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		entries := make([]viewLogEntry, 0, len(logs))
		for _, l := range logs {
			entries = append(entries, viewLogEntryFrom(l))
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"postId": post.ID,
			"total":  post.Views,
			"items":  entries,
		})
	}
}

// UserViewLogs lists which posts a user has viewed, newest first.
func UserViewLogs(views *service.Views, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if username == "" {
			respondError(w, http.StatusBadRequest, "username is required")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		logs, err := views.LogsByUser(r.Context(), username, limit, offset)
		if err != nil {
			lg.Errorw("list user view logs failed", "username", username, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		entries := make([]viewLogEntry, 0, len(logs))
		for _, l := range logs {
			e := viewLogEntryFrom(l)
			e.PostID = l.PostID
			entries = append(entries, e)
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"username": username,
			"items":    entries,
		})
	}
}
