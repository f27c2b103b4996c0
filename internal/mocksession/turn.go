package mocksession

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/gateway"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// SendTurn records the candidate's message and waits for the interviewer.
// The candidate turn is appended before the call, and an interviewer turn
// always follows it: FallbackReply stands in when the call fails. Only one
// turn may be outstanding.
func (s *Session) SendTurn(ctx context.Context, text string) (Snapshot, error) {
	if strings.TrimSpace(text) == "" {
		return s.Snapshot(ctx), ErrEmptyTurn
	}

	s.mu.Lock()
	switch {
	case s.state == types.StateEnded:
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), ErrSessionClosed
	case s.state != types.StateActive:
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), ErrNotActive
	case s.busy:
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), ErrBusy
	}
	s.busy = true
	s.transcript = append(s.transcript, s.turn(types.RoleCandidate, text))
	epoch, key, conv := s.epoch, s.key, s.conv
	s.mu.Unlock()

	reply := s.exchange(ctx, key, epoch, conv, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return s.snapshotLocked(ctx), ErrInterrupted
	}
	s.transcript = append(s.transcript, s.turn(types.RoleInterviewer, reply))
	s.busy = false
	return s.snapshotLocked(ctx), nil
}

// exchange sends text, opening the conversation first if the greeting never did.
func (s *Session) exchange(ctx context.Context, key types.ContextKey, epoch uint64, conv gateway.Conversation, text string) string {
	if conv == nil {
		opened, err := s.interviewer.OpenConversation(ctx, key.Company, key.Role)
		if err != nil {
			s.logger.Warn("failed to open interview conversation",
				zap.String("company", key.Company), zap.String("role", key.Role), zap.Error(err))
			return FallbackReply
		}
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			opened.Close()
			return FallbackReply
		}
		s.conv = opened
		s.mu.Unlock()
		conv = opened
	}

	reply, err := conv.Send(ctx, text)
	if err != nil {
		s.logger.Warn("interviewer reply failed",
			zap.String("company", key.Company), zap.String("role", key.Role), zap.Error(err))
		return FallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackReply
	}
	return reply
}
