package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionItem_JSONFieldNames(t *testing.T) {
	item := QuestionItem{
		ID:         "q_001",
		Question:   "Describe a production incident you led",
		Type:       CategoryBehavioral,
		Source:     ProvenanceResumeProbe,
		Hint:       "Use STAR",
		Bookmarked: true,
		UserAnswer: "At my last job...",
		AIFeedback: "Good structure",
	}

	jsonBytes, err := json.Marshal(item)
	require.NoError(t, err)
	out := string(jsonBytes)
	assert.Contains(t, out, `"type":"Behavioral"`)
	assert.Contains(t, out, `"source":"Resume Probe"`)
	assert.Contains(t, out, `"isBookmarked":true`)
	assert.Contains(t, out, `"userAnswer":"At my last job..."`)
	assert.Contains(t, out, `"aiFeedback":"Good structure"`)
}

func TestQuestionItem_UnknownTagsPreserved(t *testing.T) {
	var item QuestionItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","question":"Q","type":"Leadership","source":"Forum"}`), &item))

	assert.Equal(t, Category("Leadership"), item.Type)
	assert.False(t, item.Type.Valid())
	assert.False(t, item.Source.Valid())
	assert.False(t, item.HasAnswer())
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range []Category{CategoryBehavioral, CategoryTechnical, CategorySystemDesign, CategoryCulturalFit} {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("behavioral").Valid())
}

func TestQuestionDescriptor_ToItem(t *testing.T) {
	d := QuestionDescriptor{Question: "Design a rate limiter", Type: "System Design", Source: "Role Requirement", Hint: "token bucket"}
	item := d.ToItem("id-1")

	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, CategorySystemDesign, item.Type)
	assert.Equal(t, ProvenanceRoleRequirement, item.Source)
	assert.False(t, item.Bookmarked)
	assert.Empty(t, item.UserAnswer)
	assert.Empty(t, item.AIFeedback)
}

func TestContextKey(t *testing.T) {
	k := ContextKey{Company: "Acme", Role: "Engineer"}
	assert.Equal(t, "prep_questions_Acme_Engineer", k.StorageKey())
	assert.True(t, k.Complete())
	assert.False(t, k.IsZero())

	assert.True(t, ContextKey{}.IsZero())
	assert.False(t, ContextKey{Company: "Acme"}.Complete())

	// Keys are exact.
	assert.NotEqual(t, k.StorageKey(), ContextKey{Company: "acme", Role: "Engineer"}.StorageKey())
}

func TestContextKey_StorageKeyIsUnambiguous(t *testing.T) {
	pairs := []ContextKey{
		{Company: "a_b", Role: "c"},
		{Company: "a", Role: "b_c"},
		{Company: "a", Role: "b\\_c"},
		{Company: "a\\", Role: "b_c"},
		{Company: "a\\_b", Role: "c"},
		{Company: "a_", Role: "_b"},
	}
	seen := make(map[string]ContextKey)
	for _, k := range pairs {
		key := k.StorageKey()
		prev, dup := seen[key]
		assert.False(t, dup, "%v and %v share storage key %q", prev, k, key)
		seen[key] = k
	}
	assert.Equal(t, `prep_questions_a\_b_c`, ContextKey{Company: "a_b", Role: "c"}.StorageKey())
}

func TestPrepTab_Valid(t *testing.T) {
	assert.True(t, TabQuestions.Valid())
	assert.True(t, TabMockInterview.Valid())
	assert.True(t, TabSelfIntro.Valid())
	assert.False(t, PrepTab("settings").Valid())
}
