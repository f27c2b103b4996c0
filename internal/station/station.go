// Package station composes the interview prep components of one installation
// and applies the navigation rules that tie them together.
package station

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/intro"
	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/mocksession"
	"github.com/shiyoungwoo/Resume-assistant/internal/questionbank"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

var (
	// ErrUnknownTab is returned for tabs outside the known set.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrNoIntro is returned when there is no generated intro to transfer.
	ErrNoIntro = errors.New("no generated self introduction")
)

// Gateway is everything the station needs from the AI service.
type Gateway interface {
	questionbank.Generator
	mocksession.Interviewer
	intro.Writer
	Close() error
}

// Options tune a station.
type Options struct {
	// AutoGenerate requests questions when a context with no saved bank is selected.
	AutoGenerate bool
	// InitialPoints seeds the balance of a fresh installation.
	InitialPoints int
}

// Station is the prep station of one installation.
type Station struct {
	Bank    *questionbank.Engine
	Session *mocksession.Session
	Intro   *intro.Pipeline
	Draft   *intro.Draft
	Points  *ledger.Ledger
	Quota   *ledger.Quota

	store   store.Store
	gateway Gateway
	opts    Options
	logger  *zap.Logger

	mu        sync.Mutex
	tab       types.PrepTab
	lastIntro *types.SelfIntro
	closed    bool
}

// New wires the components over st and gw and seeds the points balance.
func New(ctx context.Context, gw Gateway, st store.Store, devices media.Acquirer, opts Options, logger *zap.Logger) (*Station, error) {
	logger = logging.OrNop(logger)

	points := ledger.New(st)
	if err := points.Seed(ctx, opts.InitialPoints); err != nil {
		return nil, fmt.Errorf("failed to seed points: %w", err)
	}
	quota := ledger.NewQuota(st)

	return &Station{
		Bank:    questionbank.New(gw, st, logger.Named("questionbank")),
		Session: mocksession.New(gw, devices, quota, points, logger.Named("mocksession")),
		Intro:   intro.New(gw, logger.Named("intro")),
		Draft:   &intro.Draft{},
		Points:  points,
		Quota:   quota,
		store:   st,
		gateway: gw,
		opts:    opts,
		logger:  logger,
		tab:     types.TabQuestions,
	}, nil
}

// Tab returns the selected tab.
func (s *Station) Tab() types.PrepTab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// SelectTab switches tabs. Leaving the mock interview ends it.
func (s *Station) SelectTab(tab types.PrepTab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	s.mu.Lock()
	previous := s.tab
	s.tab = tab
	s.mu.Unlock()

	if previous == types.TabMockInterview && tab != types.TabMockInterview {
		s.Session.End()
	}
	return nil
}

// SetContext selects company and role. A change of context ends any running
// mock interview before the bank is switched. With AutoGenerate, switching to a
// context with an empty bank fills it right away and the number of added
// questions is returned. Selecting the current context again does nothing.
func (s *Station) SetContext(ctx context.Context, company, role string) (int, error) {
	next := types.ContextKey{Company: company, Role: role}
	changed := s.Bank.ActiveContext() != next
	if changed && s.Session.State() != types.StateIdle {
		s.Session.End()
	}

	empty := s.Bank.SetActiveContext(ctx, company, role)
	if !changed || !empty || !s.opts.AutoGenerate || !next.Complete() {
		return 0, nil
	}
	added, err := s.Bank.RequestMoreQuestions(ctx)
	if errors.Is(err, questionbank.ErrBusy) {
		return 0, nil
	}
	return added, err
}

// GenerateIntro generates an intro for the active context from the stored resume.
func (s *Station) GenerateIntro(ctx context.Context) (*types.SelfIntro, error) {
	key := s.Bank.ActiveContext()
	return s.GenerateIntroFor(ctx, key.Role, key.Company)
}

// GenerateIntroFor generates an intro for role and company from the stored
// resume and remembers it for TransferScript.
func (s *Station) GenerateIntroFor(ctx context.Context, role, company string) (*types.SelfIntro, error) {
	generated, err := s.Intro.GenerateFromStore(ctx, s.store, role, company)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lastIntro = generated
	s.mu.Unlock()
	return generated, nil
}

// SetResumeContext stores the resume text used for intros and question generation.
func (s *Station) SetResumeContext(ctx context.Context, text string) error {
	if err := s.store.SetResumeContext(ctx, text); err != nil {
		return fmt.Errorf("failed to store resume context: %w", err)
	}
	return nil
}

// LastIntro returns the most recently generated intro, if any.
func (s *Station) LastIntro() *types.SelfIntro {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastIntro == nil {
		return nil
	}
	copied := *s.lastIntro
	return &copied
}

// TransferScript copies the last generated script into the draft.
func (s *Station) TransferScript() (string, error) {
	last := s.LastIntro()
	if last == nil {
		return "", ErrNoIntro
	}
	s.Draft.TransferScript(last)
	return s.Draft.Text(), nil
}

// RefineDraft refines the current draft for the active context.
func (s *Station) RefineDraft(ctx context.Context) (string, error) {
	key := s.Bank.ActiveContext()
	return s.Intro.Refine(ctx, intro.RefineRequest{Draft: s.Draft.Text(), Role: key.Role, Company: key.Company})
}

// Close tears the station down: the session is closed, the bank flushed and
// the gateway released. Further calls to Close do nothing.
func (s *Station) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Session.Close()
	s.Bank.Flush(ctx)
	if err := s.gateway.Close(); err != nil {
		s.logger.Warn("failed to close AI gateway", zap.Error(err))
		return err
	}
	return nil
}
