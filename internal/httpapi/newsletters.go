package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"pressroom/app"
	"pressroom/domain"
)

type listResponse struct {
	Newsletters []domain.Newsletter `json:"newsletters"`
	Total       int                 `json:"total"`
	Page        int                 `json:"page"`
	TotalPages  int                 `json:"totalPages"`
}

func (s *Server) listNewsletters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.NewsletterFilter{Category: q.Get("category")}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := s.pubs.List(r.Context(), f, s.isPrivileged(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []domain.Newsletter{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Newsletters: page.Items,
		Total:       page.Total,
		Page:        page.Page,
		TotalPages:  page.TotalPages,
	})
}

type draftRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Featured   bool     `json:"featured"`
	Pinned     bool     `json:"pinned"`
	Published  bool     `json:"published"`
	CoverImage string   `json:"coverImage"`
	AuthorID   string   `json:"authorId"`
}

func (s *Server) createNewsletter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNewsletterBodySize)
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	n, err := s.pubs.Create(r.Context(), app.Draft{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		Tags:       req.Tags,
		Featured:   req.Featured,
		Pinned:     req.Pinned,
		Published:  req.Published,
		CoverImage: req.CoverImage,
		AuthorID:   req.AuthorID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) getNewsletter(w http.ResponseWriter, r *http.Request) {
	n, err := s.pubs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) getNewsletterBySlug(w http.ResponseWriter, r *http.Request) {
	n, err := s.pubs.GetBySlug(r.Context(), r.PathValue("slug"), s.isPrivileged(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// updateNewsletter decodes the patch through raw messages so that an absent
// field, an explicit null and a value stay distinguishable.
func (s *Server) updateNewsletter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNewsletterBodySize)
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	var patch app.Patch
	var err error
	patch.Title, err = stringField(raw, "title", err)
	patch.Content, err = stringField(raw, "content", err)
	patch.Category, err = stringField(raw, "category", err)
	patch.Excerpt, err = nullableStringField(raw, "excerpt", err)
	patch.CoverImage, err = nullableStringField(raw, "coverImage", err)
	patch.Featured, err = boolField(raw, "featured", err)
	patch.Pinned, err = boolField(raw, "pinned", err)
	patch.Published, err = boolField(raw, "published", err)
	if v, ok := raw["tags"]; ok && err == nil {
		var tags []string
		if jerr := json.Unmarshal(v, &tags); jerr != nil {
			err = fmt.Errorf("field tags: %w", jerr)
		} else {
			patch.Tags = &tags
		}
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	n, uerr := s.pubs.Update(r.Context(), r.PathValue("id"), patch)
	if uerr != nil {
		s.writeError(w, uerr)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNewsletter(w http.ResponseWriter, r *http.Request) {
	if err := s.pubs.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Deleted"})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	totalNews, published, err := s.pubs.Counts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	totalSubs, activeSubs, err := s.subs.Counts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"totalNewsletters":  totalNews,
		"published":         published,
		"drafts":            totalNews - published,
		"totalSubscribers":  totalSubs,
		"activeSubscribers": activeSubs,
	})
}

func stringField(raw map[string]json.RawMessage, key string, prev error) (*string, error) {
	if prev != nil {
		return nil, prev
	}
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &s, nil
}

// nullableStringField maps an explicit JSON null to a pointer at the empty
// string, which the patch treats as "clear the stored value".
func nullableStringField(raw map[string]json.RawMessage, key string, prev error) (*string, error) {
	if prev != nil {
		return nil, prev
	}
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	if s == nil {
		empty := ""
		return &empty, nil
	}
	return s, nil
}

func boolField(raw map[string]json.RawMessage, key string, prev error) (*bool, error) {
	if prev != nil {
		return nil, prev
	}
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &b, nil
}
