package domain

import "time"

// FollowUp is one question/answer pair appended to a conversation
type FollowUp struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationRecord is the append-only log owned by a query id. It is
// created on the first committed Solution and grows with each follow-up;
// a record is never rewound to an unanswered state. The stored context lets
// follow-up prompts be reconstructed exactly rather than depending on
// rendering order.
type ConversationRecord struct {
	QueryID   string           `json:"query_id"`
	Query     Query            `json:"query"`
	Solution  Solution         `json:"solution"`
	Context   RetrievedContext `json:"context"`
	FollowUps []FollowUp       `json:"follow_ups,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewConversationRecord creates the record committed alongside a first Solution
func NewConversationRecord(query Query, solution Solution, context RetrievedContext) *ConversationRecord {
	now := time.Now().UTC()
	return &ConversationRecord{
		QueryID:   query.ID,
		Query:     query,
		Solution:  solution,
		Context:   context,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
