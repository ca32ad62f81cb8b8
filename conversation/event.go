package conversation

type EventKind string

const (
	KindText    EventKind = "text"
	KindPhoto   EventKind = "photo"
	KindCommand EventKind = "command"
)

type Command string

const (
	CommandCancel Command = "cancel"
	CommandSkip   Command = "skip"

	// Workflow starts. Only honored at StepNone; mid-workflow they are
	// treated like any other mismatched input.
	CommandStartProfileVerification Command = "start_profile_verification"
	CommandStartTicket              Command = "start_ticket"
	CommandStartFeedback            Command = "start_feedback"
)

// Event is one inbound user event. Photos arrive as opaque asset references;
// the host ingests bytes before the engine ever sees the event.
type Event struct {
	Kind     EventKind
	Text     string
	Command  Command
	AssetRef string
}

func TextEvent(text string) Event    { return Event{Kind: KindText, Text: text} }
func PhotoEvent(ref string) Event    { return Event{Kind: KindPhoto, AssetRef: ref} }
func CommandEvent(cmd Command) Event { return Event{Kind: KindCommand, Command: cmd} }
