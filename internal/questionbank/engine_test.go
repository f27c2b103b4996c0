package questionbank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiyoungwoo/Resume-assistant/internal/gateway"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

type fakeGenerator struct {
	mu        sync.Mutex
	questions func(company, role string, exclude []string) string
	feedback  func(question, draft string) (string, error)
	excludes  [][]string
}

func (f *fakeGenerator) GenerateQuestions(_ context.Context, company, role string, exclude []string) string {
	f.mu.Lock()
	f.excludes = append(f.excludes, exclude)
	f.mu.Unlock()
	if f.questions == nil {
		return "[]"
	}
	return f.questions(company, role, exclude)
}

func (f *fakeGenerator) GenerateAnswerFeedback(_ context.Context, question, draft string) (string, error) {
	if f.feedback == nil {
		return "feedback for " + question, nil
	}
	return f.feedback(question, draft)
}

// countingStore records SaveBank calls.
type countingStore struct {
	*store.Memory
	mu    sync.Mutex
	saves int
	fail  bool
}

func (c *countingStore) SaveBank(ctx context.Context, key types.ContextKey, items []types.QuestionItem) error {
	c.mu.Lock()
	c.saves++
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return c.Memory.SaveBank(ctx, key, items)
}

func (c *countingStore) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func newEngine(gen Generator) (*Engine, *countingStore) {
	s := &countingStore{Memory: store.NewMemory()}
	e := New(gen, s, nil)
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("q%d", n)
	}
	return e, s
}

func questionsJSON(texts ...string) string {
	out := "["
	for i, text := range texts {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"question":%q,"type":"Technical","source":"Community","hint":"h"}`, text)
	}
	return out + "]"
}

func TestSetActiveContext_SameKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{questions: func(string, string, []string) string { return questionsJSON("Q1") }})

	assert.True(t, e.SetActiveContext(ctx, "Acme", "Engineer"))
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	saves := s.saveCount()

	assert.False(t, e.SetActiveContext(ctx, "Acme", "Engineer"))
	assert.False(t, e.SetActiveContext(ctx, "Acme", "Engineer"))
	assert.Equal(t, saves, s.saveCount())
	assert.Len(t, e.Items(), 1)
}

func TestSetActiveContext_RoundTripRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{questions: func(company, _ string, _ []string) string {
		return questionsJSON(company+" Q1", company+" Q2")
	}}
	e, _ := newEngine(gen)

	e.SetActiveContext(ctx, "Acme", "Engineer")
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	items := e.Items()
	require.Len(t, items, 2)
	require.True(t, e.ToggleBookmark(ctx, items[1].ID))
	require.True(t, e.SetAnswer(ctx, items[0].ID, "my answer"))
	snapshot := e.Items()

	assert.True(t, e.SetActiveContext(ctx, "Globex", "Engineer"))
	assert.Empty(t, e.Items())
	_, err = e.RequestMoreQuestions(ctx)
	require.NoError(t, err)

	assert.False(t, e.SetActiveContext(ctx, "Acme", "Engineer"))
	assert.Equal(t, snapshot, e.Items())
}

func TestSetActiveContext_KeysAreExact(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(&fakeGenerator{questions: func(string, string, []string) string { return questionsJSON("Q") }})

	e.SetActiveContext(ctx, "Acme", "Engineer")
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)

	assert.True(t, e.SetActiveContext(ctx, "acme", "Engineer"))
	assert.True(t, e.SetActiveContext(ctx, "Acme ", "Engineer"))
}

func TestSetActiveContext_UnderscoresDoNotShareBanks(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(&fakeGenerator{questions: func(company, role string, _ []string) string {
		return questionsJSON(company + "/" + role)
	}})

	e.SetActiveContext(ctx, "a_b", "c")
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)

	assert.True(t, e.SetActiveContext(ctx, "a", "b_c"), "distinct context starts empty")
	assert.Empty(t, e.Items())
	_, err = e.RequestMoreQuestions(ctx)
	require.NoError(t, err)

	e.SetActiveContext(ctx, "a_b", "c")
	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "a_b/c", items[0].Question)
}

func TestSetActiveContext_CorruptBankStartsEmpty(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{})
	s.PutRaw(types.ContextKey{Company: "Acme", Role: "Engineer"}.StorageKey(), "[{broken")

	assert.True(t, e.SetActiveContext(ctx, "Acme", "Engineer"))
	assert.Empty(t, e.Items())
}

func TestRequestMoreQuestions_AppendsWithFreshIDs(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{questions: func(string, string, []string) string {
		return "```json\n" + questionsJSON("Describe a hard bug", "Design a URL shortener") + "\n```"
	}}
	e, s := newEngine(gen)
	e.newID = uuidLike()
	e.SetActiveContext(ctx, "Acme", "Engineer")

	added, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	items := e.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.Equal(t, "Describe a hard bug", items[0].Question)
	assert.Equal(t, types.CategoryTechnical, items[0].Type)
	assert.Equal(t, types.ProvenanceCommunity, items[0].Source)
	assert.False(t, items[0].Bookmarked)

	stored, err := s.LoadBank(ctx, types.ContextKey{Company: "Acme", Role: "Engineer"})
	require.NoError(t, err)
	assert.Equal(t, items, stored)
}

func uuidLike() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
	}
}

func TestRequestMoreQuestions_PassesHeldTextsAsExclusions(t *testing.T) {
	ctx := context.Background()
	round := 0
	gen := &fakeGenerator{questions: func(string, string, []string) string {
		round++
		return questionsJSON(fmt.Sprintf("Q%d", round))
	}}
	e, _ := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")

	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	_, err = e.RequestMoreQuestions(ctx)
	require.NoError(t, err)

	require.Len(t, gen.excludes, 2)
	assert.Empty(t, gen.excludes[0])
	assert.Equal(t, []string{"Q1"}, gen.excludes[1])
}

func TestRequestMoreQuestions_MalformedAddsNothing(t *testing.T) {
	cases := map[string]string{
		"not json":      "Sorry, I cannot help with that.",
		"object":        `{"question":"Q"}`,
		"empty":         "",
		"service error": gateway.EmptyQuestions,
		"truncated":     `[{"question":"Q1"},`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seeded := true
			gen := &fakeGenerator{questions: func(string, string, []string) string {
				if seeded {
					seeded = false
					return questionsJSON("Existing")
				}
				return reply
			}}
			e, s := newEngine(gen)
			e.SetActiveContext(ctx, "Acme", "Engineer")
			_, err := e.RequestMoreQuestions(ctx)
			require.NoError(t, err)
			before := e.Items()
			saves := s.saveCount()

			added, err := e.RequestMoreQuestions(ctx)
			require.NoError(t, err)
			assert.Zero(t, added)
			assert.Equal(t, before, e.Items())
			assert.Equal(t, saves, s.saveCount())
			assert.False(t, e.IsRefreshing())
		})
	}
}

func TestRequestMoreQuestions_ValidatesEachElement(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{questions: func(string, string, []string) string {
		return `[
			{"question":"Valid one","type":"Behavioral","source":"Community","hint":"h"},
			{"type":"Technical"},
			{"question":"   "},
			{"question": 42},
			"just a string",
			{"question":"Unknown tags kept","type":"Leadership","source":"Forum","hint":null}
		]`
	}}
	e, _ := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")

	added, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	items := e.Items()
	assert.Equal(t, "Valid one", items[0].Question)
	assert.Equal(t, types.Category("Leadership"), items[1].Type)
}

// Deduplication is an exact-text filter against the held bank and the same
// reply. Near duplicates that differ in case or wording are kept.
func TestRequestMoreQuestions_DedupIsExactTextOnly(t *testing.T) {
	ctx := context.Background()
	round := 0
	gen := &fakeGenerator{questions: func(string, string, []string) string {
		round++
		if round == 1 {
			return questionsJSON("Why Acme?", "Why Acme?")
		}
		return questionsJSON("Why Acme?", "why acme?")
	}}
	e, _ := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")

	added, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	texts := map[string]int{}
	for _, item := range e.Items() {
		texts[item.Question]++
	}
	assert.Equal(t, map[string]int{"Why Acme?": 1, "why acme?": 1}, texts)
}

func TestRequestMoreQuestions_RequiresContext(t *testing.T) {
	e, _ := newEngine(&fakeGenerator{})
	_, err := e.RequestMoreQuestions(context.Background())
	assert.ErrorIs(t, err, ErrNoContext)

	e.SetActiveContext(context.Background(), "Acme", "")
	_, err = e.RequestMoreQuestions(context.Background())
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestRequestMoreQuestions_SingleInFlight(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	gen := &fakeGenerator{questions: func(string, string, []string) string {
		calls++
		close(started)
		<-release
		return questionsJSON("Q1")
	}}
	e, _ := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")

	done := make(chan int)
	go func() {
		added, _ := e.RequestMoreQuestions(ctx)
		done <- added
	}()
	<-started

	assert.True(t, e.IsRefreshing())
	added, err := e.RequestMoreQuestions(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, added)

	close(release)
	assert.Equal(t, 1, <-done)
	assert.False(t, e.IsRefreshing())
	assert.Equal(t, 1, calls)
}

func TestRequestMoreQuestions_LateResultGoesToOriginatingContext(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{questions: func(company, _ string, _ []string) string {
		if company == "Acme" {
			close(started)
			<-release
		}
		return questionsJSON(company + " question")
	}}
	e, s := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")

	done := make(chan int)
	go func() {
		added, _ := e.RequestMoreQuestions(ctx)
		done <- added
	}()
	<-started

	e.SetActiveContext(ctx, "Globex", "Engineer")
	assert.False(t, e.IsRefreshing())
	close(release)
	assert.Equal(t, 1, <-done)

	assert.Empty(t, e.Items())
	acme, err := s.LoadBank(ctx, types.ContextKey{Company: "Acme", Role: "Engineer"})
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, "Acme question", acme[0].Question)

	e.SetActiveContext(ctx, "Acme", "Engineer")
	assert.Equal(t, acme, e.Items())
}

func TestToggleBookmarkAndSetAnswer_UnknownID(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{questions: func(string, string, []string) string { return questionsJSON("Q1") }})
	e.SetActiveContext(ctx, "Acme", "Engineer")
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	before := e.Items()
	saves := s.saveCount()

	assert.False(t, e.ToggleBookmark(ctx, "missing"))
	assert.False(t, e.SetAnswer(ctx, "missing", "text"))
	assert.Equal(t, before, e.Items())
	assert.Equal(t, saves, s.saveCount())
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{questions: func(string, string, []string) string { return questionsJSON("Q1") }})
	key := types.ContextKey{Company: "Acme", Role: "Engineer"}
	e.SetActiveContext(ctx, key.Company, key.Role)
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	id := e.Items()[0].ID

	require.True(t, e.ToggleBookmark(ctx, id))
	stored, err := s.LoadBank(ctx, key)
	require.NoError(t, err)
	assert.True(t, stored[0].Bookmarked)

	require.True(t, e.SetAnswer(ctx, id, "STAR answer"))
	stored, err = s.LoadBank(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "STAR answer", stored[0].UserAnswer)

	require.True(t, e.ToggleBookmark(ctx, id))
	stored, err = s.LoadBank(ctx, key)
	require.NoError(t, err)
	assert.False(t, stored[0].Bookmarked)
}

func TestPersistenceFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{questions: func(string, string, []string) string { return questionsJSON("Q1") }})
	s.fail = true
	e.SetActiveContext(ctx, "Acme", "Engineer")

	added, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.True(t, e.SetAnswer(ctx, e.Items()[0].ID, "draft"))
	assert.Equal(t, "draft", e.Items()[0].UserAnswer)
}

func TestRequestAnswerFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores feedback", func(t *testing.T) {
		gen := &fakeGenerator{
			questions: func(string, string, []string) string { return questionsJSON("Why Go?") },
			feedback: func(question, draft string) (string, error) {
				assert.Equal(t, "Why Go?", question)
				assert.Empty(t, draft)
				return "Outline: ...", nil
			},
		}
		e, s := newEngine(gen)
		e.SetActiveContext(ctx, "Acme", "Engineer")
		_, err := e.RequestMoreQuestions(ctx)
		require.NoError(t, err)
		id := e.Items()[0].ID

		text, err := e.RequestAnswerFeedback(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Outline: ...", text)
		assert.Equal(t, "Outline: ...", e.Items()[0].AIFeedback)
		assert.False(t, e.IsBusy(id))

		stored, err := s.LoadBank(ctx, types.ContextKey{Company: "Acme", Role: "Engineer"})
		require.NoError(t, err)
		assert.Equal(t, "Outline: ...", stored[0].AIFeedback)
	})

	t.Run("failure stores nothing", func(t *testing.T) {
		gen := &fakeGenerator{
			questions: func(string, string, []string) string { return questionsJSON("Why Go?") },
			feedback: func(string, string) (string, error) {
				return gateway.FeedbackUnavailable, errors.New("timeout")
			},
		}
		e, _ := newEngine(gen)
		e.SetActiveContext(ctx, "Acme", "Engineer")
		_, err := e.RequestMoreQuestions(ctx)
		require.NoError(t, err)
		id := e.Items()[0].ID
		require.True(t, e.SetAnswer(ctx, id, "my draft"))

		text, err := e.RequestAnswerFeedback(ctx, id)
		assert.Error(t, err)
		assert.Equal(t, gateway.FeedbackUnavailable, text)

		item := e.Items()[0]
		assert.Empty(t, item.AIFeedback)
		assert.Equal(t, "my draft", item.UserAnswer)
		assert.False(t, e.IsBusy(id))
	})

	t.Run("unknown id", func(t *testing.T) {
		e, _ := newEngine(&fakeGenerator{})
		_, err := e.RequestAnswerFeedback(ctx, "missing")
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})
}

func TestRequestAnswerFeedback_OnePerItem(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{
		questions: func(string, string, []string) string { return questionsJSON("Q1", "Q2") },
		feedback: func(question, _ string) (string, error) {
			if question == "Q1" {
				close(started)
				<-release
			}
			return "fb " + question, nil
		},
	}
	e, _ := newEngine(gen)
	e.SetActiveContext(ctx, "Acme", "Engineer")
	_, err := e.RequestMoreQuestions(ctx)
	require.NoError(t, err)
	items := e.Items()

	done := make(chan error)
	go func() {
		_, err := e.RequestAnswerFeedback(ctx, items[0].ID)
		done <- err
	}()
	<-started

	assert.True(t, e.IsBusy(items[0].ID))
	_, err = e.RequestAnswerFeedback(ctx, items[0].ID)
	assert.ErrorIs(t, err, ErrBusy)

	// Other items are independent.
	text, err := e.RequestAnswerFeedback(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "fb Q2", text)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, e.IsBusy(items[0].ID))
	assert.Equal(t, "fb Q1", e.Items()[0].AIFeedback)
}

func TestFlush(t *testing.T) {
	ctx := context.Background()
	e, s := newEngine(&fakeGenerator{})
	e.Flush(ctx)
	assert.Zero(t, s.saveCount())

	e.SetActiveContext(ctx, "Acme", "Engineer")
	e.Flush(ctx)
	assert.Zero(t, s.saveCount(), "empty banks are not written")
}
