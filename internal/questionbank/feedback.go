package questionbank

import (
	"context"

	"go.uber.org/zap"
)

// RequestAnswerFeedback asks for feedback on the draft answer of question id
// and stores it on success. On failure nothing is stored and the fallback text
// is returned with the error. Only one request per question may be in flight.
func (e *Engine) RequestAnswerFeedback(ctx context.Context, id string) (string, error) {
	e.mu.Lock()
	i := indexOf(e.items, id)
	if i < 0 {
		e.mu.Unlock()
		return "", ErrQuestionNotFound
	}
	if e.feedbackBusy[id] {
		e.mu.Unlock()
		return "", ErrBusy
	}
	e.feedbackBusy[id] = true
	key := e.key
	question, draft := e.items[i].Question, e.items[i].UserAnswer
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.feedbackBusy, id)
		e.mu.Unlock()
	}()

	text, err := e.gen.GenerateAnswerFeedback(ctx, question, draft)
	if err != nil {
		e.logger.Warn("answer feedback unavailable",
			zap.String("company", key.Company),
			zap.String("role", key.Role),
			zap.String("question_id", id),
			zap.Error(err))
		return text, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if key == e.key {
		if j := indexOf(e.items, id); j >= 0 {
			e.items[j].AIFeedback = text
			e.persist(ctx, key, e.items)
		}
		return text, nil
	}

	bank := e.load(ctx, key)
	if j := indexOf(bank, id); j >= 0 {
		bank[j].AIFeedback = text
		e.persist(ctx, key, bank)
	}
	return text, nil
}
