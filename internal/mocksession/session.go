// Package mocksession runs the mock interview lifecycle: quota and payment
// gating, device acquisition, the interviewer conversation and teardown.
package mocksession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/gateway"
	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

const (
	// MaxFreeAttempts is the number of sessions that can start without paying.
	MaxFreeAttempts = ledger.MaxFreeAttempts
	// MockCost is the points price of one extra session.
	MockCost = 200

	// KickoffMessage is sent to the interviewer to obtain the greeting.
	KickoffMessage = "Start the interview."
	// FallbackGreeting is shown when the interviewer greets with no text.
	FallbackGreeting = "Hello, let's begin the interview. Please introduce yourself."
	// FallbackReply stands in for an interviewer reply that failed.
	FallbackReply = "I didn't catch that."
)

// Errors returned by Session operations.
var (
	ErrValidation         = errors.New("company and role are required")
	ErrEmptyTurn          = errors.New("message text is required")
	ErrQuotaExceeded      = errors.New("free mock interview attempts used up")
	ErrPermissionDenied   = media.ErrPermissionDenied
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrUnlockNotNeeded    = errors.New("free attempts remain, unlock not needed")
	ErrBusy               = errors.New("mock interview is busy")
	ErrNotActive          = errors.New("no active mock interview")
	ErrAlreadyStarted     = errors.New("mock interview already in progress")
	ErrInterrupted        = errors.New("mock interview ended before the call completed")
	ErrSessionClosed      = errors.New("mock interview closed")
)

// Interviewer opens interviewer conversations.
type Interviewer interface {
	OpenConversation(ctx context.Context, company, role string) (gateway.Conversation, error)
}

// Snapshot is the observable state of a session.
type Snapshot struct {
	State         types.SessionState `json:"state"`
	Company       string             `json:"company,omitempty"`
	Role          string             `json:"role,omitempty"`
	Transcript    []types.Turn       `json:"transcript"`
	Busy          bool               `json:"busy"`
	Usage         int                `json:"usage"`
	FreeAttempts  int                `json:"free_attempts"`
	HeldResources int                `json:"held_resources"`
}

// Session is the single mock interview of an installation.
//
// The lock is never held while waiting on the interviewer or on a device
// permission decision. Every teardown bumps epoch, and results from calls that
// started under an older epoch are dropped.
type Session struct {
	interviewer Interviewer
	devices     media.Acquirer
	quota       *ledger.Quota
	points      *ledger.Ledger
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string

	mu         sync.Mutex
	state      types.SessionState
	key        types.ContextKey
	conv       gateway.Conversation
	stream     media.Stream
	transcript []types.Turn
	busy       bool
	unlocking  bool
	epoch      uint64
}

// New creates an idle session.
func New(interviewer Interviewer, devices media.Acquirer, quota *ledger.Quota, points *ledger.Ledger, logger *zap.Logger) *Session {
	return &Session{
		interviewer: interviewer,
		devices:     devices,
		quota:       quota,
		points:      points,
		logger:      logging.OrNop(logger),
		now:         time.Now,
		newID:       uuid.NewString,
		state:       types.StateIdle,
	}
}

// State returns the lifecycle state.
func (s *Session) State() types.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx)
}

func (s *Session) snapshotLocked(ctx context.Context) Snapshot {
	usage, err := s.quota.Used(ctx)
	if err != nil {
		s.logger.Warn("failed to read mock interview usage", zap.Error(err))
	}
	held := 0
	if s.stream != nil {
		held = 1
	}
	return Snapshot{
		State:         s.state,
		Company:       s.key.Company,
		Role:          s.key.Role,
		Transcript:    append([]types.Turn{}, s.transcript...),
		Busy:          s.busy,
		Usage:         usage,
		FreeAttempts:  s.quota.Limit(),
		HeldResources: held,
	}
}

// End stops the session and returns to Idle. Devices are always released,
// the conversation is dropped and the transcript cleared. Replies that arrive
// afterwards are discarded. Ending an idle session does nothing harmful.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	if s.state != types.StateEnded {
		s.state = types.StateIdle
	}
}

// Close ends the session for good. Later calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.state = types.StateEnded
}

func (s *Session) teardownLocked() {
	stream, conv := s.stream, s.conv
	s.stream, s.conv = nil, nil
	s.transcript = nil
	s.busy = false
	s.key = types.ContextKey{}
	s.epoch++

	defer s.release(stream)
	if conv != nil {
		conv.Close()
	}
}

func (s *Session) release(stream media.Stream) {
	if stream == nil {
		return
	}
	if err := stream.Release(); err != nil {
		s.logger.Warn("failed to release media stream", zap.String("stream_id", stream.ID()), zap.Error(err))
	}
}

func (s *Session) turn(role types.SpeakerRole, text string) types.Turn {
	return types.Turn{ID: s.newID(), Role: role, Text: text, Timestamp: s.now()}
}
