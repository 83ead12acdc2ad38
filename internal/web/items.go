package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/client"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
)

// Home handles GET /. With ?query= it shows search results instead of the
// full list of lost items.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	data := struct {
		PageData
		Query    string
		Searched bool
		Items    []model.Item
	}{PageData: s.page(r, "College Lost & Found")}

	var err error
	if r.URL.Query().Has("query") {
		data.Query = r.URL.Query().Get("query")
		data.Searched = true
		data.Items, err = s.API.Search(r.Context(), data.Query)
		if err != nil {
			data.Error = "Failed to search lost items. Please try again later."
		}
	} else {
		data.Items, err = s.API.ListItems(r.Context())
		if err != nil {
			data.Error = "Failed to fetch lost items. Please try again later."
		}
	}
	if err != nil {
		logAPIError(r, "list items", err)
		data.Items = nil
	}

	s.Templates.Render(w, "home.html", &data)
}

type reportData struct {
	PageData
	Categories []string
	Form       model.NewItem
}

// ReportPage handles GET /report-lost-item.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "report.html", &reportData{
		PageData:   s.page(r, "Report a Lost Item"),
		Categories: Categories,
	})
}

// ReportSubmit handles POST /report-lost-item.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	data := &reportData{
		PageData:   s.page(r, "Report a Lost Item"),
		Categories: Categories,
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		data.Error = "Error reporting item"
		s.Templates.Render(w, "report.html", data)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	data.Form = model.NewItem{
		Name:         r.FormValue("name"),
		Category:     r.FormValue("category"),
		LastSeen:     r.FormValue("lastSeen"),
		Description:  r.FormValue("description"),
		ContactName:  r.FormValue("contactName"),
		ContactEmail: r.FormValue("contactEmail"),
		ContactPhone: r.FormValue("contactPhone"),
	}

	var photo *client.Photo
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		photo = &client.Photo{Filename: header.Filename, Content: file}
	}

	item, err := s.API.CreateItem(r.Context(), data.Session, data.Form, photo)
	if err != nil {
		logAPIError(r, "report item", err)
		data.Error = "Error reporting item"
		s.Templates.Render(w, "report.html", data)
		return
	}

	slog.Info("item reported via web", "item_id", item.ID)
	data.Form = model.NewItem{}
	data.Success = "Item reported successfully"
	s.Templates.Render(w, "report.html", data)
}

// AdminPage handles GET /admin. ?hideFound=1 hides found items.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		PageData
		HideFound bool
		Items     []model.Item
	}{PageData: s.page(r, "Admin Dashboard")}

	data.HideFound, _ = strconv.ParseBool(r.URL.Query().Get("hideFound"))

	items, err := s.API.ListAllItems(r.Context(), data.Session)
	if err != nil {
		logAPIError(r, "list all items", err)
		data.Error = "Failed to fetch items. Please try again later."
	}
	for _, it := range items {
		if data.HideFound && it.Status == model.ItemStatusFound {
			continue
		}
		data.Items = append(data.Items, it)
	}

	s.Templates.Render(w, "admin.html", &data)
}

// AdminStatusSubmit handles POST /admin/items/{id}/status.
func (s *Server) AdminStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	patch := model.ItemPatch{Status: &status}
	if _, err := s.API.UpdateItem(r.Context(), GetSession(r.Context()), id, patch); err != nil {
		logAPIError(r, "update item", err)
		s.adminError(w, r)
		return
	}
	http.Redirect(w, r, adminReturnURL(r), http.StatusSeeOther)
}

// AdminDeleteSubmit handles POST /admin/items/{id}/delete.
func (s *Server) AdminDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := s.API.DeleteItem(r.Context(), GetSession(r.Context()), id); err != nil {
		logAPIError(r, "delete item", err)
		s.adminError(w, r)
		return
	}
	http.Redirect(w, r, adminReturnURL(r), http.StatusSeeOther)
}

// adminError re-renders the dashboard with the generic error message.
func (s *Server) adminError(w http.ResponseWriter, r *http.Request) {
	data := struct {
		PageData
		HideFound bool
		Items     []model.Item
	}{PageData: s.page(r, "Admin Dashboard")}
	data.Error = "Action failed. Please try again."
	data.Items, _ = s.API.ListAllItems(r.Context(), data.Session)
	s.Templates.Render(w, "admin.html", &data)
}

func adminReturnURL(r *http.Request) string {
	if hide, _ := strconv.ParseBool(r.FormValue("hideFound")); hide {
		return "/admin?hideFound=1"
	}
	return "/admin"
}
