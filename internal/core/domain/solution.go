package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Formula is a formula referenced by a solution, either as LaTeX captured
// from the response or as a textual description of the formula used.
type Formula struct {
	LaTeX       string `json:"latex,omitempty"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"` // inline, display, reference
}

// Step is one enumerated solution step
type Step struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Solution is the structured result of synthesis for one query.
// Fields absent from the backend response stay zero-valued; a Solution with
// no understanding, no steps, and no final answer is a synthesis failure,
// never returned to callers.
type Solution struct {
	ProblemUnderstanding string    `json:"problem_understanding,omitempty"`
	FormulasUsed         []Formula `json:"formulas_used,omitempty"`
	Steps                []Step    `json:"steps,omitempty"`
	FinalAnswer          string    `json:"final_answer,omitempty"`
	Verification         string    `json:"verification,omitempty"`

	// Query-type specific extractions
	QueryType      QueryType `json:"query_type"`
	AnswerOption   string    `json:"answer_option,omitempty"`   // mcq: A-D
	NumericalValue string    `json:"numerical_value,omitempty"` // numerical
	Unit           string    `json:"unit,omitempty"`            // numerical

	ConfidenceScore float64 `json:"confidence_score"`
	Grounded        bool    `json:"grounded"`
	DisplayText     string  `json:"display_text"`
}

// IsEmpty reports whether synthesis produced no usable structured content
func (s *Solution) IsEmpty() bool {
	return strings.TrimSpace(s.ProblemUnderstanding) == "" &&
		len(s.Steps) == 0 &&
		strings.TrimSpace(s.FinalAnswer) == ""
}

// RenderDisplayText flattens the populated fields in fixed order:
// problem understanding, enumerated steps ("N. title" then content), final
// answer. Downstream audio and copy features consume this ordering, so it is
// a stable contract.
func (s *Solution) RenderDisplayText() string {
	var parts []string

	if u := strings.TrimSpace(s.ProblemUnderstanding); u != "" {
		parts = append(parts, u)
	}
	for _, step := range s.Steps {
		header := fmt.Sprintf("%d. %s", step.Number, strings.TrimSpace(step.Title))
		if content := strings.TrimSpace(step.Content); content != "" {
			parts = append(parts, header+"\n"+content)
		} else {
			parts = append(parts, header)
		}
	}
	if a := strings.TrimSpace(s.FinalAnswer); a != "" {
		parts = append(parts, "Final Answer: "+a)
	}

	return strings.Join(parts, "\n\n")
}

var (
	speechDisplayMath = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	speechInlineMath  = regexp.MustCompile(`\$([^$\n]+)\$`)
	speechHeadings    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
)

// SpeechText renders the display text for TTS collaborators: LaTeX
// delimiters and markdown emphasis are stripped so math reads as plain
// symbols instead of dollar signs
func (s *Solution) SpeechText() string {
	text := s.DisplayText
	text = speechDisplayMath.ReplaceAllString(text, "$1")
	text = speechInlineMath.ReplaceAllString(text, "$1")
	text = speechHeadings.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	return strings.TrimSpace(text)
}

// ValidateSteps checks that step numbers strictly increase from 1
func (s *Solution) ValidateSteps() error {
	for i, step := range s.Steps {
		if step.Number != i+1 {
			return fmt.Errorf("%w: step %d numbered %d", ErrInvalidInput, i+1, step.Number)
		}
	}
	return nil
}
