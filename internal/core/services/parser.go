package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// ParseOutcome classifies a parse of the generative backend's response.
// The parser is a tolerant schema mapper: missing fields never abort a
// parse, they just downgrade the outcome.
type ParseOutcome int

const (
	// ParseSuccess means understanding, steps, and final answer were all found
	ParseSuccess ParseOutcome = iota
	// ParsePartial means at least one of the three was found
	ParsePartial
	// ParseFailure means none of understanding, steps, or final answer were found
	ParseFailure
)

func (o ParseOutcome) String() string {
	switch o {
	case ParseSuccess:
		return "success"
	case ParsePartial:
		return "partial"
	default:
		return "failure"
	}
}

var (
	stepPattern    = regexp.MustCompile(`(?i)\*\*Step\s+(\d+)[:\s]*(.*?)\*\*`)
	displayMath    = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlineMath     = regexp.MustCompile(`\$([^$\n]+)\$`)
	headingMarkers = regexp.MustCompile(`^#{1,6}\s*`)
	optionPattern  = regexp.MustCompile(`(?i)\(([A-D])\)`)
	numberPattern  = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)
	unitPattern    = regexp.MustCompile(`\b(m/s\^2|m/s|mol|Hz|kg|°C|Ω|[mNJWsAVLK])\b`)

	understandingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)Understanding the [Pp]roblem[:\s*]*(.*?)(?:\*\*Step|\n\n|$)`),
		regexp.MustCompile(`(?s)Given[:\s*]*(.*?)(?:\*\*Step|\n\n|$)`),
		regexp.MustCompile(`(?s)Problem Analysis[:\s*]*(.*?)(?:\*\*Step|\n\n|$)`),
	}
	finalAnswerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?si)Final Answer[*:\s]*(.*?)(?:\n\n|\*\*Verification|Verification|$)`),
		regexp.MustCompile(`(?si)\bAnswer[*:\s]*(.*?)(?:\n\n|\*\*Verification|Verification|$)`),
		regexp.MustCompile(`(?si)\bTherefore[,:\s]*(.*?)(?:\n\n|\*\*Verification|Verification|$)`),
		regexp.MustCompile(`(?si)\bHence[,:\s]*(.*?)(?:\n\n|\*\*Verification|Verification|$)`),
	}
	verificationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?si)Verification[*:\s]*(.*)$`),
		regexp.MustCompile(`(?si)\bCheck[*:\s]*(.*)$`),
		regexp.MustCompile(`(?si)\bVerify[*:\s]*(.*)$`),
	}
)

// ParseResponse maps a raw backend response onto the structured Solution
// fields. Step markers of the form "**Step N: title**" delimit steps; when
// none are present, paragraphs become inferred "Part N" steps. Understanding,
// final answer, and verification are located by their customary phrasings,
// with first-paragraph and last-line fallbacks.
func ParseResponse(raw string, queryType domain.QueryType) (*domain.Solution, ParseOutcome) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &domain.Solution{QueryType: queryType}, ParseFailure
	}

	solution := &domain.Solution{
		QueryType:            queryType,
		Steps:                parseSteps(raw),
		ProblemUnderstanding: extractUnderstanding(raw),
		FormulasUsed:         extractFormulas(raw),
		FinalAnswer:          extractFinalAnswer(raw),
		Verification:         extractVerification(raw),
	}

	switch queryType {
	case domain.QueryTypeMCQ:
		if m := optionPattern.FindStringSubmatch(solution.FinalAnswer); m != nil {
			solution.AnswerOption = strings.ToUpper(m[1])
		} else if m := optionPattern.FindStringSubmatch(raw); m != nil {
			solution.AnswerOption = strings.ToUpper(m[1])
		}
	case domain.QueryTypeNumerical:
		if m := numberPattern.FindString(solution.FinalAnswer); m != "" {
			solution.NumericalValue = m
		}
		if m := unitPattern.FindString(solution.FinalAnswer); m != "" {
			solution.Unit = m
		}
	}

	if solution.IsEmpty() {
		return solution, ParseFailure
	}

	solution.DisplayText = solution.RenderDisplayText()

	if solution.ProblemUnderstanding != "" && len(solution.Steps) > 0 && solution.FinalAnswer != "" {
		return solution, ParseSuccess
	}
	return solution, ParsePartial
}

// StructuralConfidence scores the parsed structure alone, before any
// grounding adjustment: 0.5 base, bonuses for multiple steps, a substantive
// final answer, and formula usage, capped at 0.95.
func StructuralConfidence(s *domain.Solution) float64 {
	confidence := 0.5

	if len(s.Steps) > 1 {
		confidence += 0.2
	}
	if len(s.FinalAnswer) > 10 {
		confidence += 0.15
	}
	if len(s.FormulasUsed) > 0 {
		confidence += 0.1
	}

	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func parseSteps(raw string) []domain.Step {
	matches := stepPattern.FindAllStringSubmatchIndex(raw, -1)

	var steps []domain.Step
	if len(matches) > 0 {
		for i, m := range matches {
			title := stripHeadings(raw[m[4]:m[5]])

			start := m[1]
			end := len(raw)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			content := stripHeadings(raw[start:end])

			// The backend numbers its own steps; renumber sequentially so a
			// skipped or repeated marker never breaks the step invariant.
			steps = append(steps, domain.Step{
				Number:  i + 1,
				Title:   title,
				Content: content,
			})
		}
		return steps
	}

	// No explicit markers: infer structure from paragraphs
	for _, para := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		n := len(steps) + 1
		steps = append(steps, domain.Step{
			Number:  n,
			Title:   fmt.Sprintf("Part %d", n),
			Content: stripHeadings(para),
		})
	}
	return steps
}

func extractUnderstanding(raw string) string {
	for _, p := range understandingPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			if got := stripHeadings(m[1]); got != "" {
				return got
			}
		}
	}

	// Fallback: first paragraph, if it is short enough to be a preamble
	first := strings.SplitN(raw, "\n\n", 2)[0]
	if len(first) < 300 {
		return stripHeadings(first)
	}
	return ""
}

func extractFinalAnswer(raw string) string {
	for _, p := range finalAnswerPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			if answer := stripHeadings(m[1]); answer != "" {
				return answer
			}
		}
	}

	// Fallback: last non-empty line
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasPrefix(line, "Verification") {
			return stripHeadings(line)
		}
	}
	return ""
}

func extractVerification(raw string) string {
	for _, p := range verificationPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return stripHeadings(m[1])
		}
	}
	return ""
}

func extractFormulas(raw string) []domain.Formula {
	var formulas []domain.Formula
	seen := make(map[string]bool)

	add := func(latex, kind string) {
		latex = strings.TrimSpace(latex)
		// Skip trivially short expressions like $x$
		if len(latex) <= 5 || seen[latex] {
			return
		}
		seen[latex] = true
		formulas = append(formulas, domain.Formula{LaTeX: latex, Kind: kind})
	}

	for _, m := range displayMath.FindAllStringSubmatch(raw, -1) {
		add(m[1], "display")
	}
	// Mask display blocks so their halves are not re-matched as inline math
	masked := displayMath.ReplaceAllString(raw, "")
	for _, m := range inlineMath.FindAllStringSubmatch(masked, -1) {
		add(m[1], "inline")
	}
	return formulas
}

// stripHeadings removes leading markdown heading markers and bold wrappers
func stripHeadings(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = headingMarkers.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimPrefix(cleaned, "**")
	cleaned = strings.TrimSuffix(cleaned, "**")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "-")
	return strings.TrimSpace(cleaned)
}
