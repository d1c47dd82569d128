package httpadapter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-graph/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
)

type climateResponse struct {
	domain.Record
	Table string `json:"table"`
}

type coordinatesResponse struct {
	Place string `json:"place"`
	domain.Coordinates
}

type queryResult struct {
	Title     string `json:"title"`
	PageError bool   `json:"page_error"`
	HasData   bool   `json:"has_data"`
	Table     string `json:"table"`
}

type queryResponse struct {
	Query      domain.Query      `json:"query"`
	Results    []queryResult     `json:"results"`
	Comparison domain.Comparison `json:"comparison,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// getClimate handles GET /v1/climate/{place}?all=&format=. It returns 404
// when the place has no article.
func (s *Server) getClimate(w http.ResponseWriter, r *http.Request) {
	place := strings.TrimSpace(chi.URLParam(r, "place"))
	if place == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "place is required"})
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	rec := s.climate.Extract(r.Context(), place)
	status := http.StatusOK
	if rec.PageError {
		status = http.StatusNotFound
	}
	table := domain.FormatText(rec, all)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		if _, err := w.Write([]byte(table + "\n")); err != nil {
			s.logger.Warn("write response failed", "error", err)
		}
		return
	}
	sharedobs.WriteJSON(w, status, climateResponse{Record: rec, Table: table})
}

// getCoordinates handles GET /v1/coordinates/{place}.
func (s *Server) getCoordinates(w http.ResponseWriter, r *http.Request) {
	place := strings.TrimSpace(chi.URLParam(r, "place"))
	coords, ok := s.climate.Coordinates(r.Context(), place)
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "no coordinates for " + place})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, coordinatesResponse{Place: place, Coordinates: coords})
}

// getQuery handles GET /v1/query?q=. The query text is split on whitespace
// and classified; every resolved city is looked up. When both months and
// categories are selected the response also carries a comparison.
func (s *Server) getQuery(w http.ResponseWriter, r *http.Request) {
	tokens := strings.Fields(r.URL.Query().Get("q"))
	if len(tokens) == 0 {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	q := s.classifier.Classify(r.Context(), tokens)
	resp := queryResponse{Query: q, Results: make([]queryResult, 0, len(q.Cities))}
	for _, city := range q.Cities {
		rec := s.climate.Extract(r.Context(), city)
		resp.Results = append(resp.Results, queryResult{
			Title:     rec.Title,
			PageError: rec.PageError,
			HasData:   domain.HasPrintableData(rec),
			Table:     domain.FormatText(rec, all || q.Location),
		})
	}
	if len(q.Cities) > 0 && q.MonthSelected() && len(q.Categories) > 0 {
		resp.Comparison = s.climate.Compare(r.Context(), q.Cities, q.Months, q.Categories)
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}
