package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// handleListTrucks returns the truck master.
func (s *Server) handleListTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := s.db.ListTrucks(r.Context())
	if err != nil {
		http.Error(w, "Failed to load trucks", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trucks)
}

// handleListContainers returns the container master.
func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.db.ListContainers(r.Context())
	if err != nil {
		http.Error(w, "Failed to load containers", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(containers)
}

// handleListProducts returns the product master.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.db.ListProducts(r.Context())
	if err != nil {
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(products)
}

// HolidayResponse is one non-working calendar date.
type HolidayResponse struct {
	Date string `json:"date"`
	Note string `json:"note,omitempty"`
}

// handleListHolidays returns holidays in a bounded window, defaulting to
// one year on either side of today.
func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	from := time.Now().AddDate(-1, 0, 0)
	to := time.Now().AddDate(1, 0, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		if parsed, err := time.Parse(isoDate, v); err == nil {
			from = parsed
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if parsed, err := time.Parse(isoDate, v); err == nil {
			to = parsed
		}
	}

	holidays, err := s.db.ListHolidays(r.Context(), from, to)
	if err != nil {
		http.Error(w, "Failed to load holidays", http.StatusInternalServerError)
		return
	}

	out := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		out[i] = HolidayResponse{Date: h.Date.Format(isoDate), Note: h.Note.String}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// AddHolidayRequest is the request body for marking a date as non-working.
type AddHolidayRequest struct {
	Date string `json:"date"`
	Note string `json:"note,omitempty"`
}

// handleAddHoliday marks one date as non-working.
func (s *Server) handleAddHoliday(w http.ResponseWriter, r *http.Request) {
	var req AddHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(isoDate, req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if err := s.db.AddHoliday(r.Context(), date, req.Note); err != nil {
		http.Error(w, "Failed to add holiday", http.StatusInternalServerError)
		return
	}

	s.auditService.Log(r.Context(), auditParams("holiday", req.Date, "add", s.currentUserName(r), map[string]interface{}{"note": req.Note}))

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveHoliday clears a non-working date, making it a working day again.
func (s *Server) handleRemoveHoliday(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	date, err := time.Parse(isoDate, dateStr)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if err := s.db.RemoveHoliday(r.Context(), date); err != nil {
		http.Error(w, "Failed to remove holiday", http.StatusInternalServerError)
		return
	}

	s.auditService.Log(r.Context(), auditParams("holiday", dateStr, "remove", s.currentUserName(r), nil))

	w.WriteHeader(http.StatusNoContent)
}
