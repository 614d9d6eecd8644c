package httpapi

import (
	"encoding/json"
	"net/http"

	"pressroom/app"
	"pressroom/domain"
)

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubscribeBodySize)
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	res, err := s.subs.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if res == app.SubscribeReactivated {
		writeJSON(w, http.StatusOK, messageBody{Message: "Re-subscribed! Check email to confirm."})
		return
	}
	writeJSON(w, http.StatusCreated, messageBody{Message: "Subscribed successfully!"})
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubscribeBodySize)
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := s.subs.Unsubscribe(r.Context(), req.Email); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Unsubscribed"})
}

func (s *Server) listSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subs.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if subs == nil {
		subs = []domain.Subscriber{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) deleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := s.subs.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Deleted"})
}
