package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

func newTestStore(t *testing.T) (*ConversationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewConversationStore(client, time.Hour), mr
}

func testRecord(queryID string) *domain.ConversationRecord {
	return domain.NewConversationRecord(
		domain.Query{
			ID:            queryID,
			RawModality:   domain.ModalityText,
			CanonicalText: "State Newton's second law",
			QueryType:     domain.QueryTypeGeneral,
			CreatedAt:     time.Now().UTC(),
		},
		domain.Solution{
			FinalAnswer: "F = ma",
			DisplayText: "Final Answer: F = ma",
		},
		domain.RetrievedContext{},
	)
}

func TestConversationStore_CreateGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record := testRecord("q-1")
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "q-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query.CanonicalText != record.Query.CanonicalText {
		t.Errorf("canonical text = %q", got.Query.CanonicalText)
	}
	if got.Solution.FinalAnswer != "F = ma" {
		t.Errorf("final answer = %q", got.Solution.FinalAnswer)
	}
	if len(got.FollowUps) != 0 {
		t.Errorf("fresh record has %d follow-ups", len(got.FollowUps))
	}
}

func TestConversationStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrUnknownQuery) {
		t.Errorf("got %v, want ErrUnknownQuery", err)
	}
}

func TestConversationStore_AppendFollowUp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("q-1")); err != nil {
		t.Fatal(err)
	}

	updated, err := store.AppendFollowUp(ctx, "q-1", domain.FollowUp{
		Question:  "Why?",
		Answer:    "Because momentum changes.",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AppendFollowUp: %v", err)
	}
	if len(updated.FollowUps) != 1 {
		t.Fatalf("updated record has %d follow-ups, want 1", len(updated.FollowUps))
	}

	// Second append preserves order
	updated, err = store.AppendFollowUp(ctx, "q-1", domain.FollowUp{Question: "And then?", Answer: "It accelerates."})
	if err != nil {
		t.Fatalf("AppendFollowUp: %v", err)
	}
	if len(updated.FollowUps) != 2 {
		t.Fatalf("updated record has %d follow-ups, want 2", len(updated.FollowUps))
	}
	if updated.FollowUps[0].Question != "Why?" || updated.FollowUps[1].Question != "And then?" {
		t.Error("follow-up order not preserved")
	}

	got, err := store.Get(ctx, "q-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.FollowUps) != 2 {
		t.Errorf("persisted record has %d follow-ups, want 2", len(got.FollowUps))
	}
}

func TestConversationStore_AppendFollowUpUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AppendFollowUp(context.Background(), "missing", domain.FollowUp{Question: "q", Answer: "a"})
	if !errors.Is(err, domain.ErrUnknownQuery) {
		t.Errorf("got %v, want ErrUnknownQuery", err)
	}
}

func TestConversationStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("q-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "q-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "q-1"); !errors.Is(err, domain.ErrUnknownQuery) {
		t.Errorf("got %v after delete, want ErrUnknownQuery", err)
	}

	// Deleting an absent record is not an error
	if err := store.Delete(ctx, "q-1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestConversationStore_Retention(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("q-1")); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "q-1")
	if !errors.Is(err, domain.ErrUnknownQuery) {
		t.Errorf("got %v after retention expiry, want ErrUnknownQuery", err)
	}
}
