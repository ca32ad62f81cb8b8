// Package conversation interprets inbound user events as transitions through
// the short, linear support workflows (profile verification, issue tickets,
// feedback). Each step expects one input class; everything else produces a
// corrective prompt without touching state.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/quailyquaily/supportbot/records"
)

const (
	ticketIDMin  = 100000
	ticketIDSpan = 900000
)

type Effect string

const (
	EffectNone    Effect = "none"
	EffectStarted Effect = "started"
	EffectStored  Effect = "stored"
	EffectInvalid Effect = "invalid_input"
	EffectReset   Effect = "reset"
)

type Result struct {
	Effect Effect
	Step   Step
	Reply  ReplyID

	// TicketID is set when the reply template needs the id (ticket opened).
	TicketID int64
}

type Engine struct {
	states  Store
	records records.Store
	logger  *slog.Logger

	// newTicketID is swappable in tests.
	newTicketID func() int64
}

func NewEngine(states Store, recs records.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		states:  states,
		records: recs,
		logger:  logger,
		newTicketID: func() int64 {
			return ticketIDMin + rand.Int64N(ticketIDSpan)
		},
	}
}

// Handle processes one event for userID. Mismatched input never mutates the
// stored step; persistence failures propagate so the host can apologize
// instead of silently dropping the event.
func (e *Engine) Handle(ctx context.Context, userID int64, ev Event, now time.Time) (Result, error) {
	state, found, err := e.states.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("conversation: load state for %d: %w", userID, err)
	}
	if !found {
		state = State{UserID: userID, Step: string(StepNone)}
	}

	step, err := ParseStep(state.Step)
	if err != nil {
		if !errors.Is(err, ErrUnknownStep) {
			return Result{}, err
		}
		// Corrupted stored step: send the user back to the start rather than
		// failing the handler.
		e.logger.Warn("conversation_unknown_step", "user_id", userID, "step", state.Step)
		state = State{UserID: userID, Step: string(StepNone)}
		if err := e.states.Put(ctx, state); err != nil {
			return Result{}, fmt.Errorf("conversation: reset state for %d: %w", userID, err)
		}
		return Result{Effect: EffectReset, Step: StepNone, Reply: ReplyRestartHint}, nil
	}

	if ev.Kind == KindCommand && ev.Command == CommandCancel {
		return e.reset(ctx, userID, ReplyCanceled)
	}

	switch step {
	case StepNone:
		return e.handleIdle(ctx, state, ev)
	case StepAwaitingProfileScreenshot:
		return e.expectPhoto(ctx, state, ev, ReplyInvalidProfileScreenshot,
			e.records.SetProfileImage, StepAwaitingTonTxScreenshot, ReplyTonTxScreenshotPrompt)
	case StepAwaitingTonTxScreenshot:
		return e.expectPhoto(ctx, state, ev, ReplyInvalidTonTxScreenshot,
			e.records.SetTransactionImage, StepAwaitingTonHash, ReplyTonHashPrompt)
	case StepAwaitingTonHash:
		return e.handleTonHash(ctx, state, ev)
	case StepAwaitingIssueScreenshot:
		return e.handleIssueScreenshot(ctx, state, ev)
	case StepAwaitingIssueDetails:
		return e.handleIssueDetails(ctx, state, ev)
	case StepFeedback:
		return e.handleFeedback(ctx, state, ev)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

func (e *Engine) handleIdle(ctx context.Context, state State, ev Event) (Result, error) {
	if ev.Kind == KindCommand {
		switch ev.Command {
		case CommandStartProfileVerification:
			return e.start(ctx, state, StepAwaitingProfileScreenshot, 0, ReplyProfileScreenshotPrompt)
		case CommandStartTicket:
			// The ticket id is allocated once here and rides on the state
			// record until the photo/skip attaches it to the ticket record.
			return e.start(ctx, state, StepAwaitingIssueScreenshot, e.newTicketID(), ReplyTicketOpened)
		case CommandStartFeedback:
			return e.start(ctx, state, StepFeedback, 0, ReplyFeedbackPrompt)
		}
	}
	if ev.Kind == KindPhoto {
		// A stray photo is answered, not silently dropped or stored.
		return Result{Effect: EffectInvalid, Step: StepNone, Reply: ReplyNoActiveProcess}, nil
	}
	return Result{Effect: EffectNone, Step: StepNone, Reply: ReplyRestartHint}, nil
}

func (e *Engine) start(ctx context.Context, state State, next Step, ticketID int64, reply ReplyID) (Result, error) {
	state.Step = string(next)
	state.Artifacts = nil
	state.TicketID = ticketID
	if err := e.states.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("conversation: start workflow for %d: %w", state.UserID, err)
	}
	return Result{Effect: EffectStarted, Step: next, Reply: reply, TicketID: ticketID}, nil
}

func (e *Engine) expectPhoto(
	ctx context.Context,
	state State,
	ev Event,
	invalidReply ReplyID,
	store func(context.Context, int64, string) error,
	next Step,
	reply ReplyID,
) (Result, error) {
	if ev.Kind != KindPhoto || strings.TrimSpace(ev.AssetRef) == "" {
		return Result{Effect: EffectInvalid, Step: Step(state.Step), Reply: invalidReply}, nil
	}
	if err := store(ctx, state.UserID, ev.AssetRef); err != nil {
		return Result{}, fmt.Errorf("conversation: store asset for %d: %w", state.UserID, err)
	}
	state.Artifacts = append(state.Artifacts, ev.AssetRef)
	state.Step = string(next)
	if err := e.states.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("conversation: advance state for %d: %w", state.UserID, err)
	}
	return Result{Effect: EffectStored, Step: next, Reply: reply}, nil
}

func (e *Engine) handleTonHash(ctx context.Context, state State, ev Event) (Result, error) {
	if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
		return Result{Effect: EffectInvalid, Step: StepAwaitingTonHash, Reply: ReplyInvalidTonHash}, nil
	}
	if err := e.records.SetTransactionHash(ctx, state.UserID, ev.Text); err != nil {
		return Result{}, fmt.Errorf("conversation: store ton hash for %d: %w", state.UserID, err)
	}
	return e.finish(ctx, state, ReplyTonHashReceived)
}

func (e *Engine) handleIssueScreenshot(ctx context.Context, state State, ev Event) (Result, error) {
	if ev.Kind == KindCommand && ev.Command == CommandSkip {
		state.Step = string(StepAwaitingIssueDetails)
		if err := e.states.Put(ctx, state); err != nil {
			return Result{}, fmt.Errorf("conversation: advance state for %d: %w", state.UserID, err)
		}
		return Result{Effect: EffectNone, Step: StepAwaitingIssueDetails, Reply: ReplyIssueDetailsPrompt}, nil
	}
	if ev.Kind != KindPhoto || strings.TrimSpace(ev.AssetRef) == "" {
		return Result{Effect: EffectInvalid, Step: StepAwaitingIssueScreenshot, Reply: ReplyInvalidIssueScreenshot}, nil
	}
	if err := e.records.AttachTicketImage(ctx, state.UserID, state.TicketID, ev.AssetRef); err != nil {
		return Result{}, fmt.Errorf("conversation: store issue image for %d: %w", state.UserID, err)
	}
	state.Artifacts = append(state.Artifacts, ev.AssetRef)
	state.Step = string(StepAwaitingIssueDetails)
	if err := e.states.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("conversation: advance state for %d: %w", state.UserID, err)
	}
	return Result{Effect: EffectStored, Step: StepAwaitingIssueDetails, Reply: ReplyIssueDetailsPrompt}, nil
}

func (e *Engine) handleIssueDetails(ctx context.Context, state State, ev Event) (Result, error) {
	if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
		return Result{Effect: EffectInvalid, Step: StepAwaitingIssueDetails, Reply: ReplyIssueDetailsPrompt}, nil
	}
	if err := e.records.SetTicketDetails(ctx, state.UserID, state.TicketID, ev.Text); err != nil {
		return Result{}, fmt.Errorf("conversation: store issue details for %d: %w", state.UserID, err)
	}
	return e.finish(ctx, state, ReplyIssueDetailsReceived)
}

func (e *Engine) handleFeedback(ctx context.Context, state State, ev Event) (Result, error) {
	if ev.Kind != KindText || strings.TrimSpace(ev.Text) == "" {
		return Result{Effect: EffectInvalid, Step: StepFeedback, Reply: ReplyFeedbackPrompt}, nil
	}
	if err := e.records.SetFeedback(ctx, state.UserID, ev.Text); err != nil {
		return Result{}, fmt.Errorf("conversation: store feedback for %d: %w", state.UserID, err)
	}
	return e.finish(ctx, state, ReplyFeedbackReceived)
}

func (e *Engine) finish(ctx context.Context, state State, reply ReplyID) (Result, error) {
	state.Step = string(StepNone)
	state.Artifacts = nil
	state.TicketID = 0
	if err := e.states.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("conversation: finish workflow for %d: %w", state.UserID, err)
	}
	return Result{Effect: EffectStored, Step: StepNone, Reply: reply}, nil
}

func (e *Engine) reset(ctx context.Context, userID int64, reply ReplyID) (Result, error) {
	if err := e.states.Put(ctx, State{UserID: userID, Step: string(StepNone)}); err != nil {
		return Result{}, fmt.Errorf("conversation: reset state for %d: %w", userID, err)
	}
	return Result{Effect: EffectReset, Step: StepNone, Reply: reply}, nil
}

// Reset clears any in-progress workflow for userID. The host uses it for
// /start, which doubles as a reset command.
func (e *Engine) Reset(ctx context.Context, userID int64) error {
	_, err := e.reset(ctx, userID, ReplyNone)
	return err
}
