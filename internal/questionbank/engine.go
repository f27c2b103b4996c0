// Package questionbank owns the question bank of the active company and role.
// Every mutation is written through to the store.
package questionbank

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

var (
	// ErrBusy is returned when the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrNoContext is returned when generation is requested without a company and role.
	ErrNoContext = errors.New("company and role are required")
	// ErrQuestionNotFound is returned for unknown question ids.
	ErrQuestionNotFound = errors.New("question not found")
)

// Generator is the part of the AI gateway the engine uses.
type Generator interface {
	GenerateQuestions(ctx context.Context, company, role string, exclude []string) string
	GenerateAnswerFeedback(ctx context.Context, question, draft string) (string, error)
}

// Engine holds the active context and its bank. Calls to the generator are
// made without holding the lock; busy flags keep them from overlapping.
type Engine struct {
	gen    Generator
	banks  store.BankStore
	logger *zap.Logger
	newID  func() string

	mu           sync.Mutex
	key          types.ContextKey
	items        []types.QuestionItem
	refreshing   map[types.ContextKey]bool
	feedbackBusy map[string]bool
}

// New creates an engine with no active context.
func New(gen Generator, banks store.BankStore, logger *zap.Logger) *Engine {
	return &Engine{
		gen:          gen,
		banks:        banks,
		logger:       logging.OrNop(logger),
		newID:        uuid.NewString,
		items:        []types.QuestionItem{},
		refreshing:   make(map[types.ContextKey]bool),
		feedbackBusy: make(map[string]bool),
	}
}

// ActiveContext returns the current context key.
func (e *Engine) ActiveContext() types.ContextKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key
}

// SetActiveContext switches to company and role. The old bank is saved if it
// holds anything, then the new one is loaded. It reports whether the now active
// bank is empty. Switching to the current key changes nothing.
func (e *Engine) SetActiveContext(ctx context.Context, company, role string) bool {
	next := types.ContextKey{Company: company, Role: role}

	e.mu.Lock()
	defer e.mu.Unlock()
	if next == e.key {
		return len(e.items) == 0
	}

	if len(e.items) > 0 && !e.key.IsZero() {
		e.persist(ctx, e.key, e.items)
	}

	e.key = next
	e.items = e.load(ctx, next)
	return len(e.items) == 0
}

// Flush writes the active bank to the store if it holds anything.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.items) > 0 && !e.key.IsZero() {
		e.persist(ctx, e.key, e.items)
	}
}

// Items returns a copy of the bank in insertion order.
func (e *Engine) Items() []types.QuestionItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.QuestionItem(nil), e.items...)
}

// OrderedView returns the bank for display: bookmarked first, then answered,
// then the rest, each group in insertion order.
func (e *Engine) OrderedView() []types.QuestionItem {
	return Order(e.Items())
}

// IsRefreshing reports whether generation is in flight for the active context.
func (e *Engine) IsRefreshing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshing[e.key]
}

// IsBusy reports whether feedback is being generated for question id.
func (e *Engine) IsBusy(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feedbackBusy[id]
}

// ToggleBookmark flips the bookmark of question id. It reports false and
// changes nothing when id is unknown.
func (e *Engine) ToggleBookmark(ctx context.Context, id string) bool {
	return e.mutate(ctx, id, func(item *types.QuestionItem) {
		item.Bookmarked = !item.Bookmarked
	})
}

// SetAnswer replaces the draft answer of question id.
func (e *Engine) SetAnswer(ctx context.Context, id, text string) bool {
	return e.mutate(ctx, id, func(item *types.QuestionItem) {
		item.UserAnswer = text
	})
}

func (e *Engine) mutate(ctx context.Context, id string, apply func(*types.QuestionItem)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := indexOf(e.items, id)
	if i < 0 {
		return false
	}
	apply(&e.items[i])
	e.persist(ctx, e.key, e.items)
	return true
}

func (e *Engine) load(ctx context.Context, key types.ContextKey) []types.QuestionItem {
	items, err := e.banks.LoadBank(ctx, key)
	if err != nil {
		e.logger.Warn("failed to load question bank, starting empty",
			zap.String("company", key.Company),
			zap.String("role", key.Role),
			zap.Error(err))
		return []types.QuestionItem{}
	}
	return items
}

func (e *Engine) persist(ctx context.Context, key types.ContextKey, items []types.QuestionItem) {
	if err := e.banks.SaveBank(ctx, key, items); err != nil {
		e.logger.Warn("failed to save question bank",
			zap.String("company", key.Company),
			zap.String("role", key.Role),
			zap.Error(err))
	}
}

func indexOf(items []types.QuestionItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Order partitions items into bookmarked, answered and remaining groups,
// keeping insertion order inside each group. The input is not modified.
func Order(items []types.QuestionItem) []types.QuestionItem {
	ordered := make([]types.QuestionItem, 0, len(items))
	var answered, rest []types.QuestionItem
	for _, item := range items {
		switch {
		case item.Bookmarked:
			ordered = append(ordered, item)
		case item.HasAnswer():
			answered = append(answered, item)
		default:
			rest = append(rest, item)
		}
	}
	ordered = append(ordered, answered...)
	return append(ordered, rest...)
}
