package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"corpsite/internal/models"
)

type createContactReq struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Message string `json:"message" validate:"required"`
}

// CreateContact is the open intake endpoint: no auth, every submission gets
// a public reference id the visitor can quote later.
func CreateContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createContactReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "name, a valid email, and a message are required")
			return
		}
		c := models.Contact{
			Reference: uuid.NewString(),
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Message:   req.Message,
			Status:    "pending",
		}
		if err := db.WithContext(r.Context()).Create(&c).Error; err != nil {
			lg.Errorw("create contact failed", "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{
			"message":   "contact request received",
			"reference": c.Reference,
		})
	}
}

func ListContacts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var contacts []models.Contact
		if err := db.WithContext(r.Context()).Order("created_at desc").Find(&contacts).Error; err != nil {
			lg.Errorw("list contacts failed", "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusOK, contacts)
	}
}

func GetContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid contact id")
			return
		}
		var c models.Contact
		if err := db.WithContext(r.Context()).First(&c, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "contact not found")
				return
			}
			lg.Errorw("get contact failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

type updateContactReq struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress resolved closed"`
}

func UpdateContactStatus(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid contact id")
			return
		}
		var req updateContactReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(w, http.StatusBadRequest, "status must be one of pending, in_progress, resolved, closed")
			return
		}
		res := db.WithContext(r.Context()).Model(&models.Contact{}).
			Where("id = ?", uint(id)).Update("status", req.Status)
		if res.Error != nil {
			lg.Errorw("update contact failed", "id", id, "error", res.Error)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		if res.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "contact updated"})
	}
}

func DeleteContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid contact id")
			return
		}
		res := db.WithContext(r.Context()).Delete(&models.Contact{}, uint(id))
		if res.Error != nil {
			lg.Errorw("delete contact failed", "id", id, "error", res.Error)
			respondError(w, http.StatusInternalServerError, "server error")
			return
		}
		if res.RowsAffected == 0 {
			respondError(w, http.StatusNotFound, "contact not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
	}
}
