package types

// SelfIntro is a generated self-introduction.
type SelfIntro struct {
	Rationale string `json:"rationale"`
	Script    string `json:"script"`
}
