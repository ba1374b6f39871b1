package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven/mocks"
)

func groundedContext(score float64) domain.RetrievedContext {
	return domain.RetrievedContext{Passages: []domain.ScoredPassage{
		{
			Passage: &domain.Passage{
				ID:         "ncert/physics/laws-of-motion/p1",
				Text:       "Newton's second law states that force equals mass times acceleration.",
				Subject:    domain.SubjectPhysics,
				Topic:      "newtons-laws",
				SourceType: domain.SourceNCERT,
			},
			Score: score,
		},
	}}
}

func testQuery(text string) domain.Query {
	return domain.Query{
		ID:            "q-1",
		RawModality:   domain.ModalityText,
		CanonicalText: text,
		QueryType:     domain.DetectQueryType(text),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestSynthesize_GroundedSolution(t *testing.T) {
	generator := mocks.NewMockGeneratorService()
	retrieved := groundedContext(0.8)

	solution, err := Synthesize(context.Background(), generator, testQuery("State Newton's second law"), retrieved, nil, DefaultSynthesisConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if !solution.Grounded {
		t.Error("expected grounded solution")
	}
	if solution.FinalAnswer == "" {
		t.Error("expected final answer")
	}
	if solution.ConfidenceScore <= DefaultSynthesisConfig().UngroundedCeiling {
		t.Errorf("grounded confidence %f should exceed the ungrounded ceiling", solution.ConfidenceScore)
	}

	// The prompt carries both the question and the tagged passage
	req := generator.LastRequest()
	if req == nil {
		t.Fatal("no request captured")
	}
	if req.System != tutorSystemPrompt {
		t.Error("system prompt not set")
	}
	if !strings.Contains(req.User, "State Newton's second law") {
		t.Error("user prompt missing the question")
	}
	if !strings.Contains(req.User, "Relevant Information:") {
		t.Error("user prompt missing the context block")
	}
	if !strings.Contains(req.User, "[ncert physics/newtons-laws ncert/physics/laws-of-motion/p1]") {
		t.Errorf("user prompt missing the source tag:\n%s", req.User)
	}
}

func TestSynthesize_UngroundedConfidenceCapped(t *testing.T) {
	generator := mocks.NewMockGeneratorService()
	cfg := DefaultSynthesisConfig()

	solution, err := Synthesize(context.Background(), generator, testQuery("anything"), domain.RetrievedContext{}, nil, cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if solution.Grounded {
		t.Error("expected ungrounded solution")
	}
	if solution.ConfidenceScore > cfg.UngroundedCeiling {
		t.Errorf("ungrounded confidence %f exceeds ceiling %f", solution.ConfidenceScore, cfg.UngroundedCeiling)
	}

	if req := generator.LastRequest(); strings.Contains(req.User, "Relevant Information:") {
		t.Error("ungrounded prompt should carry no context block")
	}
}

func TestSynthesize_UnusableResponse(t *testing.T) {
	generator := mocks.NewMockGeneratorService("")

	_, err := Synthesize(context.Background(), generator, testQuery("a question"), groundedContext(0.9), nil, DefaultSynthesisConfig())
	if !errors.Is(err, domain.ErrSynthesisFailure) {
		t.Errorf("got %v, want ErrSynthesisFailure", err)
	}
}

func TestSynthesize_GeneratorErrors(t *testing.T) {
	generator := mocks.NewMockGeneratorService()
	generator.Err = errors.New("api unavailable")

	_, err := Synthesize(context.Background(), generator, testQuery("q"), domain.RetrievedContext{}, nil, DefaultSynthesisConfig())
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("got %v, want ErrGeneration", err)
	}

	generator.Err = context.DeadlineExceeded
	_, err = Synthesize(context.Background(), generator, testQuery("q"), domain.RetrievedContext{}, nil, DefaultSynthesisConfig())
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Errorf("got %v, want ErrBackendTimeout", err)
	}
}

func TestSynthesize_AttachesImage(t *testing.T) {
	generator := mocks.NewMockGeneratorService()
	image := []byte{0xff, 0xd8, 0xff}

	_, err := Synthesize(context.Background(), generator, testQuery("solve the pictured problem"), domain.RetrievedContext{}, image, DefaultSynthesisConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	req := generator.LastRequest()
	if len(req.Image) != len(image) {
		t.Error("image payload not forwarded to the backend")
	}
}

func TestSynthesizeFollowUp_PromptCarriesPriorConversation(t *testing.T) {
	generator := mocks.NewMockGeneratorService("The second step applies F = ma to the given mass.")

	query := testQuery("State Newton's second law")
	solution := domain.Solution{
		ProblemUnderstanding: "We need to state the law.",
		Steps:                []domain.Step{{Number: 1, Title: "Statement", Content: "F = ma"}},
		FinalAnswer:          "F = ma",
	}
	solution.DisplayText = solution.RenderDisplayText()
	record := domain.NewConversationRecord(query, solution, groundedContext(0.8))
	record.FollowUps = []domain.FollowUp{{Question: "Why?", Answer: "Because momentum changes.", CreatedAt: time.Now()}}

	answer, err := SynthesizeFollowUp(context.Background(), generator, record, "Can you explain step 2?", DefaultSynthesisConfig())
	if err != nil {
		t.Fatalf("SynthesizeFollowUp: %v", err)
	}
	if answer != "The second step applies F = ma to the given mass." {
		t.Errorf("answer = %q", answer)
	}

	prompt := generator.LastRequest().User
	for _, want := range []string{
		"Follow-up Question: Can you explain step 2?",
		"Original Question: State Newton's second law",
		"Previous solution summary:",
		"Earlier follow-up: Why?",
		"Earlier answer: Because momentum changes.",
		"Relevant Information:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("follow-up prompt missing %q", want)
		}
	}
}

func TestSynthesizeFollowUp_EmptyAnswer(t *testing.T) {
	generator := mocks.NewMockGeneratorService("   ")
	record := domain.NewConversationRecord(testQuery("q"), domain.Solution{FinalAnswer: "x"}, domain.RetrievedContext{})

	_, err := SynthesizeFollowUp(context.Background(), generator, record, "why?", DefaultSynthesisConfig())
	if !errors.Is(err, domain.ErrSynthesisFailure) {
		t.Errorf("got %v, want ErrSynthesisFailure", err)
	}
}

// stalledGenerator accepts the request and never answers, releasing only
// when the call's context is cancelled
type stalledGenerator struct{}

func (stalledGenerator) Complete(ctx context.Context, _ driven.PromptRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (stalledGenerator) Model() string              { return "stalled" }
func (stalledGenerator) Ping(context.Context) error { return nil }
func (stalledGenerator) Close() error               { return nil }

func TestSynthesize_StalledBackendTimesOut(t *testing.T) {
	cfg := DefaultSynthesisConfig()
	cfg.RequestTimeout = 50 * time.Millisecond

	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err = Synthesize(context.Background(), stalledGenerator{}, testQuery("State Newton's second law"), domain.RetrievedContext{}, nil, cfg)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Synthesize still blocked after 2s")
	}
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Errorf("got %v, want ErrBackendTimeout", err)
	}
}

func TestSynthesizeFollowUp_StalledBackendTimesOut(t *testing.T) {
	cfg := DefaultSynthesisConfig()
	cfg.RequestTimeout = 50 * time.Millisecond

	record := domain.NewConversationRecord(testQuery("State Newton's second law"), domain.Solution{DisplayText: "F = ma"}, domain.RetrievedContext{})
	_, err := SynthesizeFollowUp(context.Background(), stalledGenerator{}, record, "why?", cfg)
	if !errors.Is(err, domain.ErrBackendTimeout) {
		t.Errorf("got %v, want ErrBackendTimeout", err)
	}
}
