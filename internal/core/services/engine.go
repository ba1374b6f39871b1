package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driving"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/runtime"
)

// Ensure engine implements Engine
var _ driving.Engine = (*engine)(nil)

// engine orchestrates the resolution pipeline: normalize, retrieve,
// synthesize, commit. AI services are accessed dynamically via
// runtime.Services so provider reconfiguration takes effect without
// rebuilding the engine.
type engine struct {
	normalizer *Normalizer
	corpus     driven.CorpusProvider
	services   *runtime.Services
	store      driven.ConversationStore
	history    driven.HistoryStore // optional, best-effort
	logger     *slog.Logger

	retrieval RetrievalConfig
	synthesis SynthesisConfig

	// Per-query-id serialization for follow-up appends. Different ids
	// proceed independently; entries are pruned once the last holder
	// releases so the map does not grow with every id ever seen.
	mu    sync.Mutex
	locks map[string]*queryLock
}

type queryLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine creates the resolution engine. history may be nil when query
// auditing is disabled.
func NewEngine(
	normalizer *Normalizer,
	corpus driven.CorpusProvider,
	services *runtime.Services,
	store driven.ConversationStore,
	history driven.HistoryStore,
	retrieval RetrievalConfig,
	synthesis SynthesisConfig,
	logger *slog.Logger,
) driving.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &engine{
		normalizer: normalizer,
		corpus:     corpus,
		services:   services,
		store:      store,
		history:    history,
		logger:     logger,
		retrieval:  retrieval,
		synthesis:  synthesis,
		locks:      make(map[string]*queryLock),
	}
}

// Submit resolves a primary question submission end to end. Either a full
// Solution is committed to the conversation store or nothing is; a failure
// at any stage leaves no half-written record behind.
func (e *engine) Submit(ctx context.Context, req driving.SubmitRequest) (*driving.SubmitResult, error) {
	start := time.Now()

	// The id is minted before processing so failed attempts are auditable
	// under their own id too
	queryID := uuid.NewString()

	result, err := e.submit(ctx, req, queryID, start)
	if err != nil {
		e.recordHistory(queryID, req, result, err, time.Since(start))
		return nil, err
	}
	e.recordHistory(queryID, req, result, nil, time.Since(start))
	return result, nil
}

func (e *engine) submit(ctx context.Context, req driving.SubmitRequest, queryID string, start time.Time) (*driving.SubmitResult, error) {
	canonical, subject, err := e.normalizer.Normalize(ctx, req.Input, req.SubjectHint)
	if err != nil {
		return nil, err
	}

	query := domain.Query{
		ID:            queryID,
		RawModality:   req.Input.Modality(),
		CanonicalText: canonical,
		SubjectHint:   subject,
		QueryType:     domain.DetectQueryType(canonical),
		CreatedAt:     start.UTC(),
	}

	retrieved, err := e.retrieveContext(ctx, query, req.AllowUngrounded)
	if err != nil {
		return nil, err
	}

	generator := e.services.GeneratorService()
	if generator == nil {
		return nil, domain.ErrServiceUnavailable
	}

	solution, err := Synthesize(ctx, generator, query, retrieved, imageBytes(req.Input), e.synthesis)
	if err != nil {
		return nil, err
	}

	record := domain.NewConversationRecord(query, *solution, retrieved)
	if err := e.store.Create(ctx, record); err != nil {
		return nil, err
	}

	e.logger.Info("query resolved",
		"query_id", query.ID,
		"modality", query.RawModality,
		"subject", query.SubjectHint,
		"query_type", query.QueryType,
		"passages", len(retrieved.Passages),
		"grounded", solution.Grounded,
		"confidence", solution.ConfidenceScore,
		"took", time.Since(start))

	return &driving.SubmitResult{
		QueryID:  query.ID,
		Query:    query,
		Solution: solution,
		Context:  retrieved,
	}, nil
}

// retrieveContext runs retrieval against the active corpus snapshot.
// Embedding failures abort the submission unless the caller allowed an
// ungrounded answer, in which case synthesis proceeds with empty context.
func (e *engine) retrieveContext(ctx context.Context, query domain.Query, allowUngrounded bool) (domain.RetrievedContext, error) {
	embedder := e.services.EmbeddingService()
	if embedder == nil {
		if allowUngrounded {
			return domain.RetrievedContext{}, nil
		}
		return domain.RetrievedContext{}, domain.ErrUngroundedRefused
	}

	retrieved, err := Retrieve(ctx, embedder, e.corpus.Active(), query.CanonicalText, query.SubjectHint, e.retrieval)
	if err != nil {
		if allowUngrounded && (errors.Is(err, domain.ErrEmbedding) || errors.Is(err, domain.ErrBackendTimeout)) {
			e.logger.Warn("retrieval failed, answering ungrounded", "query_id", query.ID, "error", err)
			return domain.RetrievedContext{}, nil
		}
		return domain.RetrievedContext{}, err
	}
	return retrieved, nil
}

// FollowUp answers a follow-up with full prior context and appends the pair
// to the conversation record. Appends for one query id are serialized.
func (e *engine) FollowUp(ctx context.Context, queryID, question string) (string, error) {
	if queryID == "" {
		return "", domain.ErrUnknownQuery
	}
	if question == "" {
		return "", domain.ErrEmptyQuery
	}

	unlock := e.lockQuery(queryID)
	defer unlock()

	record, err := e.store.Get(ctx, queryID)
	if err != nil {
		return "", err
	}

	generator := e.services.GeneratorService()
	if generator == nil {
		return "", domain.ErrServiceUnavailable
	}

	answer, err := SynthesizeFollowUp(ctx, generator, record, question, e.synthesis)
	if err != nil {
		return "", err
	}

	followUp := domain.FollowUp{
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := e.store.AppendFollowUp(ctx, queryID, followUp); err != nil {
		return "", err
	}

	e.logger.Info("follow-up answered", "query_id", queryID)
	return answer, nil
}

// RenderAudioText returns the stored solution rendered for TTS collaborators
func (e *engine) RenderAudioText(ctx context.Context, queryID string) (string, error) {
	record, err := e.store.Get(ctx, queryID)
	if err != nil {
		return "", err
	}
	return record.Solution.SpeechText(), nil
}

// lockQuery serializes follow-up appends for one query id. The returned
// function releases the lock and drops the map entry when no other caller
// still holds or awaits it.
func (e *engine) lockQuery(queryID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[queryID]
	if !ok {
		lock = &queryLock{}
		e.locks[queryID] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		e.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(e.locks, queryID)
		}
		e.mu.Unlock()
	}
}

// recordHistory writes the audit row. Failures are logged, never surfaced;
// history is plumbing around the engine, not part of it.
func (e *engine) recordHistory(queryID string, req driving.SubmitRequest, result *driving.SubmitResult, submitErr error, took time.Duration) {
	if e.history == nil {
		return
	}

	entry := &driven.HistoryEntry{
		QueryID:        queryID,
		Status:         "completed",
		ProcessingTime: took,
		CreatedAt:      time.Now().UTC(),
	}
	if req.Input != nil {
		entry.Modality = req.Input.Modality()
	}
	if result != nil {
		entry.CanonicalText = result.Query.CanonicalText
		entry.Subject = result.Query.SubjectHint
		entry.QueryType = result.Query.QueryType
		entry.Confidence = result.Solution.ConfidenceScore
		entry.Grounded = result.Solution.Grounded
	}
	if submitErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = submitErr.Error()
	}

	// Detached context: a slow audit write must not hold up the response
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.history.Record(ctx, entry); err != nil {
		e.logger.Warn("history write failed", "query_id", entry.QueryID, "error", err)
	}
}

// imageBytes pulls the visual payload out of an image submission so the
// generative backend sees the original photograph
func imageBytes(input domain.Input) []byte {
	if img, ok := input.(domain.ImageInput); ok {
		return img.Image
	}
	return nil
}
