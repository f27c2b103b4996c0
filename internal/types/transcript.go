package types

import "time"

// SpeakerRole identifies who produced a transcript turn.
type SpeakerRole string

// Speaker roles of a mock interview.
const (
	RoleInterviewer SpeakerRole = "interviewer"
	RoleCandidate   SpeakerRole = "candidate"
)

// Turn is one message of a mock interview transcript.
type Turn struct {
	ID        string      `json:"id"`
	Role      SpeakerRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionState is the state of the mock interview lifecycle.
type SessionState string

// Mock interview states.
const (
	StateIdle               SessionState = "idle"
	StateAwaitingPermission SessionState = "awaiting_permission"
	StateActive             SessionState = "active"
	StateEnded              SessionState = "ended"
)

// PrepTab is a view of the prep station. Leaving the mock interview tab ends the session.
type PrepTab string

// Prep station tabs.
const (
	TabQuestions     PrepTab = "questions"
	TabMockInterview PrepTab = "mock_interview"
	TabSelfIntro     PrepTab = "self_intro"
)

// Valid reports whether the tab is known.
func (t PrepTab) Valid() bool {
	switch t {
	case TabQuestions, TabMockInterview, TabSelfIntro:
		return true
	}
	return false
}
