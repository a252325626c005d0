package runner

import (
	"time"

	"github.com/google/uuid"
)

// Special user prompt values that trigger non-chat actions
const (
	NextClientPrompt = "NEXT_CLIENT"
)

// TestSuite defines a scripted playthrough of one shop.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `yaml:"name"`
	Shop  string     `yaml:"shop,omitempty"`  // Used for regular tests
	Steps []TestStep `yaml:"steps,omitempty"` // Used for regular tests
	Cases []string   `yaml:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player message and its expected outcomes.
// Use user_prompt: "NEXT_CLIENT" to call in the next client.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	UserPrompt   string       `yaml:"user_prompt"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a test step executes.
// Model output varies, so most checks are loose.
type Expectations struct {
	State        *string `yaml:"state,omitempty"`
	AcceptsInput *bool   `yaml:"accepts_input,omitempty"`
	Resolution   *string `yaml:"resolution,omitempty"`
	HasOutcome   *bool   `yaml:"has_outcome,omitempty"`
	MadeDeals    *int    `yaml:"made_deals,omitempty"`
	ClientCount  *int    `yaml:"client_count,omitempty"`

	// Offer movement relative to the offer before the step.
	OfferNotAbove *bool `yaml:"offer_not_above,omitempty"`
	OfferChanged  *bool `yaml:"offer_changed,omitempty"`

	// Response Analysis
	ResponseContains    []string `yaml:"response_contains,omitempty"`
	ResponseNotContains []string `yaml:"response_not_contains,omitempty"`
	ResponseRegex       string   `yaml:"response_regex,omitempty"`
	ResponseMinLength   *int     `yaml:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `yaml:"response_max_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	RequestID    string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	SessionID uuid.UUID
	Duration  time.Duration
	Error     error
}
