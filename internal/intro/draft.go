package intro

import (
	"sync"

	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// Draft is the user's editable introduction text. It is filled from a
// generated intro only by an explicit TransferScript; the two never stay linked.
type Draft struct {
	mu   sync.Mutex
	text string
}

// Text returns the current draft.
func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// SetText replaces the draft.
func (d *Draft) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
}

// TransferScript copies the script of intro into the draft.
func (d *Draft) TransferScript(intro *types.SelfIntro) bool {
	if intro == nil {
		return false
	}
	d.SetText(intro.Script)
	return true
}
