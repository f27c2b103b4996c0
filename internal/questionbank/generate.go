package questionbank

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/schemas"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// RequestMoreQuestions asks the generator for new questions for the active
// context and appends the usable ones. A malformed reply adds nothing and is
// not an error. Results are applied to the context they were requested for,
// even if the active context has changed meanwhile.
func (e *Engine) RequestMoreQuestions(ctx context.Context) (int, error) {
	e.mu.Lock()
	key := e.key
	if !key.Complete() {
		e.mu.Unlock()
		return 0, ErrNoContext
	}
	if e.refreshing[key] {
		e.mu.Unlock()
		return 0, ErrBusy
	}
	e.refreshing[key] = true
	exclude := make([]string, len(e.items))
	for i, item := range e.items {
		exclude[i] = item.Question
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.refreshing, key)
		e.mu.Unlock()
	}()

	raw := e.gen.GenerateQuestions(ctx, key.Company, key.Role, exclude)
	descriptors := e.parseDescriptors(key, raw)
	if len(descriptors) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := key == e.key
	bank := e.items
	if !current {
		bank = e.load(ctx, key)
	}

	seen := make(map[string]bool, len(bank))
	for _, item := range bank {
		seen[item.Question] = true
	}
	added := 0
	for _, d := range descriptors {
		if seen[d.Question] {
			continue
		}
		seen[d.Question] = true
		bank = append(bank, d.ToItem(e.newID()))
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if current {
		e.items = bank
	}
	e.persist(ctx, key, bank)
	return added, nil
}

// parseDescriptors reads a JSON array of question descriptors. Each element is
// checked on its own so one bad entry does not discard the rest.
func (e *Engine) parseDescriptors(key types.ContextKey, raw string) []types.QuestionDescriptor {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &elements); err != nil {
		e.logger.Warn("question generation returned no usable array",
			zap.String("company", key.Company),
			zap.String("role", key.Role),
			zap.Error(err))
		return nil
	}

	descriptors := make([]types.QuestionDescriptor, 0, len(elements))
	for i, element := range elements {
		if err := schemas.Validate(schemas.QuestionDescriptor, element); err != nil {
			e.logger.Debug("skipping question descriptor", zap.Int("index", i), zap.Error(err))
			continue
		}
		var d types.QuestionDescriptor
		if err := json.Unmarshal(element, &d); err != nil {
			e.logger.Debug("skipping question descriptor", zap.Int("index", i), zap.Error(err))
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}
