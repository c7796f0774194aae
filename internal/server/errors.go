// Package server provides the HTTP API for the cover letter generator.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cover-letter-generator/internal/crawling"
	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/jonathan/cover-letter-generator/internal/letter"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Upstream failures (portfolio site or model) map to 502.
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		aggregationErr *crawling.AggregationError
		fetchErr       *fetch.Error
		modelErr       *crawling.ModelResponseError
		generationErr  *letter.GenerationError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &aggregationErr),
		errors.As(err, &fetchErr),
		errors.As(err, &modelErr),
		errors.As(err, &generationErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// extractValidationErrors converts validator errors into an ErrValidation
// describing the first failing field.
func extractValidationErrors(err error) *ErrValidation {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return &ErrValidation{Field: jsonFieldName(ve.Field()), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid request"}
}

var jsonFieldNames = map[string]string{
	"ApplicantName": "applicant_name",
	"PortfolioURL":  "portfolio_url",
	"JobTitle":      "job_title",
	"CompanyName":   "company_name",
	"KeySkills":     "key_skills",
	"Tone":          "tone",
}

func jsonFieldName(field string) string {
	if name, ok := jsonFieldNames[field]; ok {
		return name
	}
	return field
}
