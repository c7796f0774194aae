package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/cover-letter-generator/internal/types"
)

// handleGenerateCoverLetter validates the request and returns a generated
// cover letter.
func (s *Server) handleGenerateCoverLetter(w http.ResponseWriter, r *http.Request) {
	var req types.CoverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		validationErr := extractValidationErrors(err)
		s.errorResponse(w, HTTPStatus(validationErr), validationErr.Error())
		return
	}

	logger := s.logger.With("request_id", RequestID(r.Context()))
	logger.Info("generating cover letter",
		"portfolio_url", req.PortfolioURL,
		"company", req.CompanyName,
		"tone", req.EffectiveTone())

	letter, err := s.composer.Compose(r.Context(), &req)
	if err != nil {
		status := HTTPStatus(err)
		logger.Error("cover letter generation failed", "status", status, "err", err)
		if status == http.StatusInternalServerError {
			s.errorResponse(w, status, "internal server error")
			return
		}
		s.errorResponse(w, status, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, types.CoverLetterResponse{CoverLetter: letter})
}
