package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// Step names the single pending expectation of an in-progress workflow.
// StepNone means no workflow is active.
type Step string

const (
	StepNone                      Step = "none"
	StepAwaitingProfileScreenshot Step = "awaiting_profile_screenshot"
	StepAwaitingTonTxScreenshot   Step = "awaiting_ton_transaction_screenshot"
	StepAwaitingTonHash           Step = "awaiting_ton_hash"
	StepAwaitingIssueScreenshot   Step = "awaiting_issue_screenshot"
	StepAwaitingIssueDetails      Step = "awaiting_issue_details"
	StepFeedback                  Step = "feedback"
)

var ErrUnknownStep = errors.New("conversation: unknown step")

// ParseStep collapses historical "no workflow" spellings (empty, "null") into
// StepNone and rejects anything outside the closed step set.
func ParseStep(s string) (Step, error) {
	switch Step(strings.TrimSpace(strings.ToLower(s))) {
	case StepNone, "", "null":
		return StepNone, nil
	case StepAwaitingProfileScreenshot:
		return StepAwaitingProfileScreenshot, nil
	case StepAwaitingTonTxScreenshot:
		return StepAwaitingTonTxScreenshot, nil
	case StepAwaitingTonHash:
		return StepAwaitingTonHash, nil
	case StepAwaitingIssueScreenshot:
		return StepAwaitingIssueScreenshot, nil
	case StepAwaitingIssueDetails:
		return StepAwaitingIssueDetails, nil
	case StepFeedback:
		return StepFeedback, nil
	default:
		return StepNone, fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
}
