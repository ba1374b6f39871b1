package mocks

import (
	"context"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driven"
)

// CannedSolutionResponse is a well-formed backend response matching the
// tutor prompt contract. Tests that only need a parseable response use it.
const CannedSolutionResponse = `**Step 1: Understanding the Problem**
We need to state and explain the requested law.

**Step 2: Relevant Concepts/Formulas**
The governing relation is $F = ma$.

**Step 3: Solution**
The rate of change of momentum of a body is directly proportional to the
applied force and takes place in the direction of the force.

**Step 4: Final Answer**
F = ma, force equals mass times acceleration.

**Verification**
Dimensional analysis: [N] = [kg][m/s^2].`

// MockGeneratorService is a scripted GeneratorService for testing.
// Responses are popped in order; when the queue is empty the canned
// solution response is returned.
type MockGeneratorService struct {
	Responses []string
	Err       error
	Requests  []driven.PromptRequest
}

// NewMockGeneratorService creates a new MockGeneratorService
func NewMockGeneratorService(responses ...string) *MockGeneratorService {
	return &MockGeneratorService{Responses: responses}
}

func (m *MockGeneratorService) Complete(ctx context.Context, req driven.PromptRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return CannedSolutionResponse, nil
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

func (m *MockGeneratorService) Model() string {
	return "mock-generator-model"
}

func (m *MockGeneratorService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGeneratorService) Close() error {
	return nil
}

// LastRequest returns the most recent prompt, nil if none were made
func (m *MockGeneratorService) LastRequest() *driven.PromptRequest {
	if len(m.Requests) == 0 {
		return nil
	}
	return &m.Requests[len(m.Requests)-1]
}
