package runner

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/haggle/internal/handlers"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running haggle API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	ShopOverride      string // If set, overrides the shop for all test cases
	Async             bool   // Queue turns and poll, instead of waiting on the request
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 2 * time.Minute},
		Timeout:           60 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite starts a game in the suite's shop and plays every step
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	shopFile := suite.Shop
	if r.ShopOverride != "" {
		shopFile = r.ShopOverride
	}

	var created handlers.SessionView
	if err := postJSON(ctx, r.Client, r.BaseURL+"/v1/sessions", handlers.CreateSessionRequest{Shop: shopFile}, http.StatusCreated, &created); err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = created.ID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, created.ID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a single step and checks expectations
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	pre, err := GetSession(stepCtx, r.Client, r.BaseURL, sessionID)
	if err != nil {
		return fail(fmt.Errorf("failed to get session before step: %w", err))
	}

	var post *handlers.SessionView
	switch {
	case step.UserPrompt == NextClientPrompt:
		var view handlers.SessionView
		url := fmt.Sprintf("%s/v1/sessions/%s/clients", r.BaseURL, sessionID)
		if err := postJSON(stepCtx, r.Client, url, struct{}{}, http.StatusOK, &view); err != nil {
			return fail(fmt.Errorf("failed to call next client: %w", err))
		}
		post = &view
		if n := len(view.Conversation); n > 0 {
			result.ResponseText = view.Conversation[n-1].Content
		}

	case r.Async:
		requestID, err := PostChatAsync(stepCtx, r.Client, r.BaseURL, sessionID, step.UserPrompt)
		if err != nil {
			return fail(fmt.Errorf("failed to post async chat: %w", err))
		}
		result.RequestID = requestID
		post, result.ResponseText, err = PollForTurn(stepCtx, r.Client, r.BaseURL, sessionID, len(pre.Conversation))
		if err != nil {
			return fail(fmt.Errorf("failed to poll for turn: %w", err))
		}

	default:
		turn, err := PostChat(stepCtx, r.Client, r.BaseURL, sessionID, step.UserPrompt)
		if err != nil {
			return fail(fmt.Errorf("failed to post chat: %w", err))
		}
		post = &turn.Session
		result.ResponseText = turn.Reply
	}

	if err := CheckExpectations(step.Expectations, pre, post, result.ResponseText); err != nil {
		return fail(fmt.Errorf("expectation failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// CheckExpectations validates a step's expectations against the session
// before and after it ran.
func CheckExpectations(exp Expectations, pre, post *handlers.SessionView, responseText string) error {
	if exp.State != nil && string(post.State) != *exp.State {
		return fmt.Errorf("expected state %s, got %s", *exp.State, post.State)
	}
	if exp.AcceptsInput != nil && post.AcceptsInput != *exp.AcceptsInput {
		return fmt.Errorf("expected accepts_input to be %t, got %t", *exp.AcceptsInput, post.AcceptsInput)
	}
	if exp.Resolution != nil && string(post.Resolution) != *exp.Resolution {
		return fmt.Errorf("expected resolution %q, got %q", *exp.Resolution, post.Resolution)
	}
	if exp.HasOutcome != nil && (post.Outcome != nil) != *exp.HasOutcome {
		return fmt.Errorf("expected has_outcome to be %t, got %t", *exp.HasOutcome, post.Outcome != nil)
	}
	if exp.MadeDeals != nil && post.Progress.MadeDeals != *exp.MadeDeals {
		return fmt.Errorf("expected made_deals to be %d, got %d", *exp.MadeDeals, post.Progress.MadeDeals)
	}
	if exp.ClientCount != nil && post.Progress.ClientCount != *exp.ClientCount {
		return fmt.Errorf("expected client_count to be %d, got %d", *exp.ClientCount, post.Progress.ClientCount)
	}

	if exp.OfferNotAbove != nil || exp.OfferChanged != nil {
		if pre.Item == nil || post.Item == nil {
			return fmt.Errorf("offer expectations need an item before and after the step")
		}
		before, after := pre.Item.ClientOffer, post.Item.ClientOffer
		if exp.OfferNotAbove != nil && *exp.OfferNotAbove && after > before {
			return fmt.Errorf("expected offer to stay at or below %.2f, got %.2f", before, after)
		}
		if exp.OfferChanged != nil && (after != before) != *exp.OfferChanged {
			return fmt.Errorf("expected offer_changed to be %t (before %.2f, after %.2f)", *exp.OfferChanged, before, after)
		}
	}

	lowerResponse := strings.ToLower(responseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	if exp.ResponseMinLength != nil && len(responseText) < *exp.ResponseMinLength {
		return fmt.Errorf("expected response length >= %d, got %d", *exp.ResponseMinLength, len(responseText))
	}
	if exp.ResponseMaxLength != nil && len(responseText) > *exp.ResponseMaxLength {
		return fmt.Errorf("expected response length <= %d, got %d", *exp.ResponseMaxLength, len(responseText))
	}

	return nil
}
