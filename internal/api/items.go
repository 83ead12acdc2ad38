package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/events"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/store"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/upload"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files. It is not a size limit.
const multipartMemory = 32 << 20

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Uploads *upload.Sink
	Events  EventPublisher
}

// ListLost handles GET /api/items.
func (h *ItemsHandler) ListLost(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, model.ItemStatusLost)
	if err != nil {
		serverError(w, r, "error fetching items", err)
		return
	}
	writeItems(w, items)
}

// ListAll handles GET /api/admin/items.
func (h *ItemsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, "")
	if err != nil {
		serverError(w, r, "error fetching admin items", err)
		return
	}
	writeItems(w, items)
}

// Search handles GET /api/search?query=.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := store.SearchItems(r.Context(), h.DB, r.URL.Query().Get("query"))
	if err != nil {
		serverError(w, r, "error searching items", err)
		return
	}
	writeItems(w, items)
}

func writeItems(w http.ResponseWriter, items []model.Item) {
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The body is either multipart/form-data
// with the item fields and an optional "image" file, or a JSON item.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var in model.NewItem
	var imageURL string

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		in = model.NewItem{
			Name:         r.FormValue("name"),
			Category:     r.FormValue("category"),
			LastSeen:     r.FormValue("lastSeen"),
			Description:  r.FormValue("description"),
			ContactName:  r.FormValue("contactName"),
			ContactEmail: r.FormValue("contactEmail"),
			ContactPhone: r.FormValue("contactPhone"),
		}
		if !validateRequest(w, &in) {
			return
		}

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			jsonError(w, http.StatusBadRequest, "invalid image upload")
			return
		default:
			defer file.Close()
			if h.Uploads == nil {
				serverError(w, r, "error creating item", errors.New("uploads are not configured"))
				return
			}
			imageURL, err = h.Uploads.Store(file, header.Filename)
			if err != nil {
				serverError(w, r, "error creating item", err)
				return
			}
		}
	} else {
		if err := decodeJSON(r, &in); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !validateRequest(w, &in) {
			return
		}
	}

	item, err := store.CreateItem(r.Context(), h.DB, in, imageURL)
	if err != nil {
		if imageURL != "" {
			if rmErr := h.Uploads.Remove(imageURL); rmErr != nil {
				slog.Warn("removing orphaned upload", "path", imageURL, "error", rmErr)
			}
		}
		serverError(w, r, "error creating item", err)
		return
	}

	slog.Info("item reported", "item_id", item.ID, "image", item.ImageURL != "")
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/admin/items/{id}. When the resulting status is
// Found, an item.found event is published after the update is stored.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		serverError(w, r, "error updating item", err)
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateRequest(w, &patch) {
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, id, patch)
	if err != nil {
		serverError(w, r, "error updating item", err)
		return
	}

	if item.Status == model.ItemStatusFound {
		h.publishFound(r, item)
	}

	slog.Info("item updated", "item_id", item.ID, "status", item.Status)
	jsonResponse(w, http.StatusOK, item)
}

// publishFound emits item.found. Failures are logged only; they never
// change the response.
func (h *ItemsHandler) publishFound(r *http.Request, item *model.Item) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(r.Context(), events.TopicItemFound, events.NewItemFound(item)); err != nil {
		slog.ErrorContext(r.Context(), "publishing item.found", "item_id", item.ID, "error", err)
	}
}

// Delete handles DELETE /api/admin/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		serverError(w, r, "error deleting item", err)
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		serverError(w, r, "error deleting item", err)
		return
	}

	slog.Info("item deleted", "item_id", id)
	w.WriteHeader(http.StatusNoContent)
}
