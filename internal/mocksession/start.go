package mocksession

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// Start begins a mock interview for role at company using the default devices.
func (s *Session) Start(ctx context.Context, company, role string) (Snapshot, error) {
	return s.StartWith(ctx, company, role, s.devices)
}

// StartWith begins a mock interview acquiring devices through devices.
//
// It is refused with ErrQuotaExceeded once the free attempts are used up, and
// with ErrBusy while a paid unlock is in progress. A refused permission returns
// the session to Idle holding nothing. Once the devices are held the session is Active and one attempt is consumed; a failed
// greeting leaves it Active with an empty transcript.
func (s *Session) StartWith(ctx context.Context, company, role string, devices media.Acquirer) (Snapshot, error) {
	return s.start(ctx, company, role, devices, false)
}

// start runs the transition out of Idle. A paid start skips the quota check
// and does not consume an attempt.
func (s *Session) start(ctx context.Context, company, role string, devices media.Acquirer, paid bool) (Snapshot, error) {
	if strings.TrimSpace(company) == "" || strings.TrimSpace(role) == "" {
		return s.Snapshot(ctx), ErrValidation
	}
	key := types.ContextKey{Company: company, Role: role}

	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), err
	}
	if !paid && s.unlocking {
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), ErrBusy
	}
	if !paid {
		exceeded, err := s.quota.Exceeded(ctx)
		if err != nil {
			defer s.mu.Unlock()
			return s.snapshotLocked(ctx), err
		}
		if exceeded {
			defer s.mu.Unlock()
			return s.snapshotLocked(ctx), ErrQuotaExceeded
		}
	}
	s.state = types.StateAwaitingPermission
	s.key = key
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	stream, err := devices.Acquire(ctx)

	s.mu.Lock()
	if s.epoch != epoch {
		defer s.mu.Unlock()
		s.release(stream)
		return s.snapshotLocked(ctx), ErrInterrupted
	}
	if err != nil {
		defer s.mu.Unlock()
		s.release(stream)
		s.state = types.StateIdle
		s.key = types.ContextKey{}
		s.logger.Info("mock interview permission refused",
			zap.String("company", company), zap.String("role", role), zap.Error(err))
		if !errors.Is(err, ErrPermissionDenied) {
			err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return s.snapshotLocked(ctx), err
	}
	s.state = types.StateActive
	s.stream = stream
	s.transcript = []types.Turn{}
	s.busy = true
	if !paid {
		if _, err := s.quota.Consume(ctx); err != nil {
			s.logger.Warn("failed to record mock interview usage", zap.Error(err))
		}
	}
	s.mu.Unlock()

	s.greet(ctx, key, epoch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return s.snapshotLocked(ctx), ErrInterrupted
	}
	return s.snapshotLocked(ctx), nil
}

// greet opens the conversation and records the interviewer's first message.
func (s *Session) greet(ctx context.Context, key types.ContextKey, epoch uint64) {
	conv, err := s.interviewer.OpenConversation(ctx, key.Company, key.Role)
	if err != nil {
		s.logger.Warn("failed to open interview conversation",
			zap.String("company", key.Company), zap.String("role", key.Role), zap.Error(err))
		s.mu.Lock()
		if s.epoch == epoch {
			s.busy = false
		}
		s.mu.Unlock()
		return
	}

	greeting, err := conv.Send(ctx, KickoffMessage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		conv.Close()
		return
	}
	s.conv = conv
	s.busy = false
	if err != nil {
		s.logger.Warn("interviewer greeting failed",
			zap.String("company", key.Company), zap.String("role", key.Role), zap.Error(err))
		return
	}
	if strings.TrimSpace(greeting) == "" {
		greeting = FallbackGreeting
	}
	s.transcript = append(s.transcript, s.turn(types.RoleInterviewer, greeting))
}

func (s *Session) checkIdleLocked() error {
	switch s.state {
	case types.StateIdle:
		return nil
	case types.StateEnded:
		return ErrSessionClosed
	default:
		return ErrAlreadyStarted
	}
}

// PayToUnlock buys a session for MockCost points and starts it. One consumed
// attempt is refunded and the paid session itself does not consume one. It is
// only available while the free attempts are used up.
func (s *Session) PayToUnlock(ctx context.Context, company, role string) (Snapshot, error) {
	return s.PayToUnlockWith(ctx, company, role, s.devices)
}

// PayToUnlockWith is PayToUnlock acquiring devices through devices.
//
// The points are kept even if the following start is refused. The refunded
// attempt then stays available for the next start.
func (s *Session) PayToUnlockWith(ctx context.Context, company, role string, devices media.Acquirer) (Snapshot, error) {
	if strings.TrimSpace(company) == "" || strings.TrimSpace(role) == "" {
		return s.Snapshot(ctx), ErrValidation
	}

	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), err
	}
	if s.unlocking {
		defer s.mu.Unlock()
		return s.snapshotLocked(ctx), ErrBusy
	}
	s.unlocking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.unlocking = false
		s.mu.Unlock()
	}()

	exceeded, err := s.quota.Exceeded(ctx)
	if err != nil {
		return s.Snapshot(ctx), err
	}
	if !exceeded {
		return s.Snapshot(ctx), ErrUnlockNotNeeded
	}

	ok, err := s.points.Debit(ctx, MockCost)
	if err != nil {
		return s.Snapshot(ctx), err
	}
	if !ok {
		return s.Snapshot(ctx), ErrInsufficientPoints
	}
	if _, err := s.quota.Refund(ctx); err != nil {
		s.logger.Warn("failed to refund mock interview attempt", zap.Error(err))
	}
	s.logger.Info("mock interview unlocked with points",
		zap.String("company", company), zap.String("role", role), zap.Int("cost", MockCost))

	return s.start(ctx, company, role, devices, true)
}
