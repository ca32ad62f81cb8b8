package conversation

// ReplyID identifies a user-facing message template. The host owns the actual
// copy; the engine only says which template fits the outcome.
type ReplyID string

const (
	ReplyNone ReplyID = ""

	ReplyProfileScreenshotPrompt ReplyID = "profile_screenshot_prompt"
	ReplyTonTxScreenshotPrompt   ReplyID = "ton_tx_screenshot_prompt"
	ReplyTonHashPrompt           ReplyID = "ton_hash_prompt"
	ReplyTonHashReceived         ReplyID = "ton_hash_received"
	ReplyTicketOpened            ReplyID = "ticket_opened"
	ReplyIssueDetailsPrompt      ReplyID = "issue_details_prompt"
	ReplyIssueDetailsReceived    ReplyID = "issue_details_received"
	ReplyFeedbackPrompt          ReplyID = "feedback_prompt"
	ReplyFeedbackReceived        ReplyID = "feedback_received"

	ReplyInvalidProfileScreenshot ReplyID = "invalid_profile_screenshot"
	ReplyInvalidTonTxScreenshot   ReplyID = "invalid_ton_tx_screenshot"
	ReplyInvalidTonHash           ReplyID = "invalid_ton_hash"
	ReplyInvalidIssueScreenshot   ReplyID = "invalid_issue_screenshot"
	ReplyNoActiveProcess          ReplyID = "no_active_process"
	ReplyRestartHint              ReplyID = "restart_hint"
	ReplyCanceled                 ReplyID = "canceled"
)
