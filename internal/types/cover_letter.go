// Package types provides the request, response and report types shared across the cover letter service.
package types

import (
	"github.com/go-playground/validator/v10"
)

// Tone values accepted by the composer. Any other value is treated as
// ToneProfessional.
const (
	ToneProfessional = "professional"
	ToneConfident    = "confident"
)

// CoverLetterRequest is the body of POST /generate-cover-letter.
type CoverLetterRequest struct {
	ApplicantName string   `json:"applicant_name" validate:"required"`
	PortfolioURL  string   `json:"portfolio_url" validate:"required,http_url"`
	JobTitle      string   `json:"job_title" validate:"required"`
	CompanyName   string   `json:"company_name" validate:"required"`
	KeySkills     []string `json:"key_skills" validate:"required,min=1,dive,required"`
	Tone          string   `json:"tone,omitempty"`
}

// CoverLetterResponse is returned by POST /generate-cover-letter.
type CoverLetterResponse struct {
	CoverLetter string `json:"cover_letter"`
}

// WelcomeResponse is returned by GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
}

// Validate validates the CoverLetterRequest using the validator.
func (r *CoverLetterRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ApplyDefaults fills optional fields that were omitted.
func (r *CoverLetterRequest) ApplyDefaults() {
	if r.Tone == "" {
		r.Tone = ToneProfessional
	}
}

// EffectiveTone reports the tone the composer will write in. Only the exact
// value "confident" selects the confident register.
func (r *CoverLetterRequest) EffectiveTone() string {
	if r.Tone == ToneConfident {
		return ToneConfident
	}
	return ToneProfessional
}
