package types

// GenerationKind names the two billable generation operations.
type GenerationKind string

const (
	KindIdeas     GenerationKind = "ideas"
	KindPlaybooks GenerationKind = "playbooks"
)

func (k GenerationKind) Valid() bool {
	return k == KindIdeas || k == KindPlaybooks
}
