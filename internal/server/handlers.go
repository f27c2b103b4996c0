package server

import (
	"net/http"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// ContextRequest is the body of PUT /context. Both fields may be blank,
// which leaves the station without an active bank.
type ContextRequest struct {
	Company string `json:"company"`
	Role    string `json:"role"`
}

// AnswerRequest is the body of PUT /questions/{id}/answer
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// QuestionsResponse is the ordered bank of the active context
type QuestionsResponse struct {
	Company    string               `json:"company"`
	Role       string               `json:"role"`
	Refreshing bool                 `json:"refreshing"`
	Added      int                  `json:"added,omitempty"`
	Questions  []types.QuestionItem `json:"questions"`
}

// FeedbackResponse carries answer feedback. Stored is false when the text is
// a fallback that was not saved on the question.
type FeedbackResponse struct {
	QuestionID string `json:"question_id"`
	Feedback   string `json:"feedback"`
	Stored     bool   `json:"stored"`
}

func (s *Server) questions(added int) QuestionsResponse {
	key := s.station.Bank.ActiveContext()
	return QuestionsResponse{
		Company:    key.Company,
		Role:       key.Role,
		Refreshing: s.station.Bank.IsRefreshing(),
		Added:      added,
		Questions:  s.station.Bank.OrderedView(),
	}
}

// handleSetContext selects the company and role
func (s *Server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	added, err := s.station.SetContext(r.Context(), req.Company, req.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.questions(added))
}

// handleListQuestions returns the ordered bank
func (s *Server) handleListQuestions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.questions(0))
}

// handleGenerateQuestions requests more questions for the active context
func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	added, err := s.station.Bank.RequestMoreQuestions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.questions(added))
}

// handleToggleBookmark flips the bookmark of one question
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.station.Bank.ToggleBookmark(r.Context(), id) {
		s.errorResponse(w, http.StatusNotFound, "question not found")
		return
	}
	s.questionResponse(w, id)
}

// handleSetAnswer stores the draft answer of one question
func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if !s.station.Bank.SetAnswer(r.Context(), id, req.Answer) {
		s.errorResponse(w, http.StatusNotFound, "question not found")
		return
	}
	s.questionResponse(w, id)
}

// handleAnswerFeedback requests feedback on the draft answer of one question
func (s *Server) handleAnswerFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	text, err := s.station.Bank.RequestAnswerFeedback(r.Context(), id)
	if err != nil && text == "" {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, FeedbackResponse{
		QuestionID: id,
		Feedback:   text,
		Stored:     err == nil,
	})
}

func (s *Server) questionResponse(w http.ResponseWriter, id string) {
	for _, item := range s.station.Bank.Items() {
		if item.ID == id {
			s.jsonResponse(w, http.StatusOK, item)
			return
		}
	}
	s.errorResponse(w, http.StatusNotFound, "question not found")
}
