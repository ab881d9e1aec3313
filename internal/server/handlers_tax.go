package server

import "net/http"

func (s *Server) listTaxEvents(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	events, err := s.books.TaxEvents(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (s *Server) generateTaxEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year int `json:"year"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Year == 0 {
		req.Year = s.books.Today().Year()
	}

	events, err := s.books.GenerateTaxYear(r.Context(), req.Year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// Default window for upcoming deadlines, in business days.
const defaultUpcomingDays = 10

func (s *Server) upcomingTaxEvents(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultUpcomingDays)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	events, err := s.books.UpcomingTaxEvents(r.Context(), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (s *Server) markTaxEventFiled(w http.ResponseWriter, r *http.Request) {
	ev, err := s.books.MarkTaxEventFiled(r.Context(), pathID(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
