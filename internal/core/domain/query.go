package domain

import (
	"strings"
	"time"
)

// Modality identifies how a query entered the system
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
	ModalityImage Modality = "image"
)

// Input is the tagged union of the three submission modalities.
// The Query Normalizer consumes all variants uniformly.
type Input interface {
	Modality() Modality
}

// TextInput is a typed question
type TextInput struct {
	Text string
}

func (TextInput) Modality() Modality { return ModalityText }

// AudioInput is a recorded question. The engine never decodes audio itself;
// the bytes are handed to the TextExtractor collaborator.
type AudioInput struct {
	Audio  []byte
	Format string // wav, mp3, ogg, m4a, webm
}

func (AudioInput) Modality() Modality { return ModalityAudio }

// ImageInput is a photographed problem with optional user-typed context
type ImageInput struct {
	Image   []byte
	Context string
}

func (ImageInput) Modality() Modality { return ModalityImage }

// QueryType classifies the question format for solution shaping
type QueryType string

const (
	QueryTypeMCQ       QueryType = "mcq"
	QueryTypeNumerical QueryType = "numerical"
	QueryTypeTrueFalse QueryType = "true_false"
	QueryTypeGeneral   QueryType = "general"
)

// Query is one normalized user request.
// CanonicalText is non-empty for any Query that reaches retrieval;
// normalization rejects inputs that produce an empty canonical text.
type Query struct {
	ID            string    `json:"id"`
	RawModality   Modality  `json:"raw_modality"`
	CanonicalText string    `json:"canonical_text"`
	SubjectHint   Subject   `json:"subject_hint,omitempty"`
	QueryType     QueryType `json:"query_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// DetectQueryType classifies the question format from its phrasing
func DetectQueryType(text string) QueryType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "option", "choose", "which of", "select"):
		return QueryTypeMCQ
	case containsAny(lower, "calculate", "find the value", "compute"):
		return QueryTypeNumerical
	case containsAny(lower, "true or false", "correct or incorrect"):
		return QueryTypeTrueFalse
	default:
		return QueryTypeGeneral
	}
}

// subjectKeywords drive the best-effort subject auto-detection.
// Detection never hard-fails the pipeline; ties and zero scores leave
// the hint unset and retrieval runs unfiltered.
var subjectKeywords = map[Subject][]string{
	SubjectPhysics:     {"force", "velocity", "acceleration", "energy", "momentum", "wave", "electric", "magnetic", "thermodynamics", "optics"},
	SubjectChemistry:   {"molecule", "atom", "reaction", "bond", "compound", "element", "acid", "base", "organic", "inorganic"},
	SubjectMathematics: {"equation", "derivative", "integral", "limit", "matrix", "vector", "probability", "geometry", "algebra", "trigonometry"},
}

// DetectSubject scores the canonical text against per-subject keyword lists.
// Returns empty Subject when nothing matches or two subjects tie for the top score.
func DetectSubject(text string) Subject {
	lower := strings.ToLower(text)

	var best Subject
	bestScore := 0
	tied := false

	for _, subject := range []Subject{SubjectPhysics, SubjectChemistry, SubjectMathematics} {
		score := 0
		for _, kw := range subjectKeywords[subject] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = subject, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return ""
	}
	return best
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
