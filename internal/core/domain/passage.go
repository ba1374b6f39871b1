package domain

import "strings"

// Subject is the curriculum subject a passage or query belongs to
type Subject string

const (
	SubjectPhysics     Subject = "physics"
	SubjectChemistry   Subject = "chemistry"
	SubjectMathematics Subject = "mathematics"
)

// ParseSubject normalizes a user-supplied subject string.
// Returns empty Subject when the input does not name a known subject.
func ParseSubject(s string) Subject {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "physics":
		return SubjectPhysics
	case "chemistry":
		return SubjectChemistry
	case "mathematics", "maths", "math":
		return SubjectMathematics
	default:
		return ""
	}
}

// SourceType identifies the curated collection a passage came from
type SourceType string

const (
	SourceNCERT     SourceType = "ncert"
	SourceFormula   SourceType = "formula"
	SourcePastPaper SourceType = "past_paper"
	SourceExemplar  SourceType = "exemplar"
)

// Passage is an immutable unit of curated knowledge.
// Passages are created during offline corpus ingestion and never mutated;
// a full corpus rebuild replaces them wholesale.
type Passage struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Subject    Subject           `json:"subject"`
	Topic      string            `json:"topic"`
	SourceType SourceType        `json:"source_type"`
	Metadata   map[string]string `json:"metadata,omitempty"` // chapter, page, year, difficulty
	Embedding  []float32         `json:"embedding,omitempty"`
}

// SourceTag renders the citation tag prepended to a passage when it is
// handed to the generative backend, e.g. "[ncert physics/laws-of-motion ncert/physics/ch5/p3]".
func (p *Passage) SourceTag() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(p.SourceType))
	if p.Subject != "" {
		b.WriteByte(' ')
		b.WriteString(string(p.Subject))
		if p.Topic != "" {
			b.WriteByte('/')
			b.WriteString(p.Topic)
		}
	}
	b.WriteByte(' ')
	b.WriteString(p.ID)
	b.WriteByte(']')
	return b.String()
}
