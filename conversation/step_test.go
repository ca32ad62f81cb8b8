package conversation

import (
	"errors"
	"testing"
)

func TestParseStep(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Step
	}{
		{"none", StepNone},
		{"", StepNone},
		{"null", StepNone},
		{" NULL ", StepNone},
		{"awaiting_profile_screenshot", StepAwaitingProfileScreenshot},
		{"awaiting_ton_transaction_screenshot", StepAwaitingTonTxScreenshot},
		{"awaiting_ton_hash", StepAwaitingTonHash},
		{"awaiting_issue_screenshot", StepAwaitingIssueScreenshot},
		{"awaiting_issue_details", StepAwaitingIssueDetails},
		{"feedback", StepFeedback},
	}
	for _, c := range cases {
		got, err := ParseStep(c.in)
		if err != nil {
			t.Fatalf("ParseStep(%q) error = %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseStep(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseStepUnknown(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"awaiting_moon_phase", "done", "feedback2"} {
		_, err := ParseStep(in)
		if err == nil {
			t.Fatalf("ParseStep(%q) expected error", in)
		}
		if !errors.Is(err, ErrUnknownStep) {
			t.Fatalf("ParseStep(%q) error = %v, want ErrUnknownStep", in, err)
		}
	}
}
