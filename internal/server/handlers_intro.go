package server

import (
	"net/http"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// ResumeRequest is the body of PUT /resume
type ResumeRequest struct {
	ResumeContext string `json:"resume_context" validate:"required"`
}

// IntroRequest is the body of POST /intro. Blank fields fall back to the
// active context.
type IntroRequest struct {
	Role    string `json:"role"`
	Company string `json:"company"`
}

// DraftRequest is the body of PUT /intro/draft
type DraftRequest struct {
	Text string `json:"text"`
}

// IntroResponse is the generated intro and the editable draft
type IntroResponse struct {
	Intro   *types.SelfIntro `json:"intro,omitempty"`
	Draft   string           `json:"draft"`
	Refined string           `json:"refined,omitempty"`
}

// handleSetResume stores the resume context
func (s *Server) handleSetResume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.station.SetResumeContext(r.Context(), req.ResumeContext); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetIntro returns the last generated intro and the draft
func (s *Server) handleGetIntro(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, IntroResponse{
		Intro: s.station.LastIntro(),
		Draft: s.station.Draft.Text(),
	})
}

// handleGenerateIntro generates a self introduction
func (s *Server) handleGenerateIntro(w http.ResponseWriter, r *http.Request) {
	var req IntroRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	key := s.station.Bank.ActiveContext()
	if req.Role == "" {
		req.Role = key.Role
	}
	if req.Company == "" {
		req.Company = key.Company
	}

	generated, err := s.station.GenerateIntroFor(r.Context(), req.Role, req.Company)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, IntroResponse{Intro: generated, Draft: s.station.Draft.Text()})
}

// handleTransferScript copies the generated script into the draft
func (s *Server) handleTransferScript(w http.ResponseWriter, _ *http.Request) {
	text, err := s.station.TransferScript()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, IntroResponse{Intro: s.station.LastIntro(), Draft: text})
}

// handleSetDraft replaces the draft text
func (s *Server) handleSetDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.station.Draft.SetText(req.Text)
	s.jsonResponse(w, http.StatusOK, IntroResponse{Draft: s.station.Draft.Text()})
}

// handleRefineDraft polishes the draft for the active context
func (s *Server) handleRefineDraft(w http.ResponseWriter, r *http.Request) {
	refined, err := s.station.RefineDraft(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, IntroResponse{Draft: s.station.Draft.Text(), Refined: refined})
}
