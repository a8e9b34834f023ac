package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/interfaces"
	"github.com/ternarybob/finlearn/internal/models"
	"github.com/ternarybob/finlearn/internal/services/content"
)

// PreferencesHandler serves the selected-categories and selected-topics
// endpoints. Creation conflicts return 409, updates of absent documents 404.
type PreferencesHandler struct {
	storage interfaces.PreferenceStorage
	topics  *content.TopicService
	logger  arbor.ILogger
}

func NewPreferencesHandler(storage interfaces.PreferenceStorage, topics *content.TopicService, logger arbor.ILogger) *PreferencesHandler {
	return &PreferencesHandler{
		storage: storage,
		topics:  topics,
		logger:  logger,
	}
}

type categoriesRequest struct {
	Categories []struct {
		Category string `json:"category" validate:"required,max=100"`
		Level    string `json:"expertise_level" validate:"required,oneof=beginner intermediate advanced"`
	} `json:"categories" validate:"required,min=1,max=20,dive"`
}

// SelectedCategoriesHandler routes GET/POST/PUT /api/selectedcategories
func (h *PreferencesHandler) SelectedCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		sel, err := h.storage.GetCategories(r.Context(), userID)
		if err != nil {
			WriteStorageError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sel)

	case http.MethodPost:
		sel, ok := h.decodeCategories(w, r, userID)
		if !ok {
			return
		}
		if err := h.storage.SaveCategories(r.Context(), sel); err != nil {
			WriteStorageError(w, err)
			return
		}
		h.topics.InvalidateUserSelections(userID)
		WriteJSON(w, http.StatusCreated, sel)

	case http.MethodPut:
		sel, ok := h.decodeCategories(w, r, userID)
		if !ok {
			return
		}
		if err := h.storage.UpdateCategories(r.Context(), sel); err != nil {
			WriteStorageError(w, err)
			return
		}
		h.topics.InvalidateUserSelections(userID)
		WriteJSON(w, http.StatusOK, sel)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PreferencesHandler) decodeCategories(w http.ResponseWriter, r *http.Request, userID string) (*models.SelectedCategories, bool) {
	var req categoriesRequest
	if !DecodeBody(w, r, &req) {
		return nil, false
	}
	sel := &models.SelectedCategories{UserID: userID}
	for _, c := range req.Categories {
		sel.Selections = append(sel.Selections, models.CategorySelection{
			Category: c.Category,
			Level:    models.NormalizeLevel(c.Level),
		})
	}
	return sel, true
}

type topicsRequest struct {
	Topics []string `json:"topics" validate:"required,min=1,max=50,dive,max=200"`
}

// SelectedTopicsHandler routes GET/POST/PUT /api/selectedtopics
func (h *PreferencesHandler) SelectedTopicsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		sel, err := h.storage.GetTopics(r.Context(), userID)
		if err != nil {
			WriteStorageError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sel)

	case http.MethodPost:
		var req topicsRequest
		if !DecodeBody(w, r, &req) {
			return
		}
		sel := &models.SelectedTopics{UserID: userID, Topics: req.Topics}
		if err := h.storage.SaveTopics(r.Context(), sel); err != nil {
			WriteStorageError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, sel)

	case http.MethodPut:
		var req topicsRequest
		if !DecodeBody(w, r, &req) {
			return
		}
		sel := &models.SelectedTopics{UserID: userID, Topics: req.Topics}
		if err := h.storage.UpdateTopics(r.Context(), sel); err != nil {
			WriteStorageError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sel)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
