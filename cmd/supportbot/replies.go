package main

import (
	"fmt"

	"github.com/quailyquaily/supportbot/conversation"
)

// Menu labels double as workflow triggers: tapping a reply-keyboard button
// sends its label back as a plain text message.
const (
	menuIntroduction        = "📖 Introduction"
	menuReferralLink        = "🔗 My Referral Link"
	menuProfileVerification = "🔐 Profile Verification Issue"
	menuUpdates             = "📢 Updates"
	menuFeedback            = "💬 Feedback"
	menuRaiseTicket         = "🎫 Raise a Ticket"
)

func mainMenuKeyboard() *telegramReplyKeyboard {
	return &telegramReplyKeyboard{
		Keyboard: [][]telegramKeyboardButton{
			{{Text: menuIntroduction}, {Text: menuReferralLink}},
			{{Text: menuProfileVerification}, {Text: menuUpdates}},
			{{Text: menuFeedback}, {Text: menuRaiseTicket}},
		},
		ResizeKeyboard: true,
	}
}

const (
	welcomeText = "Welcome to the support bot! 👋\n\nUse the menu below to verify your profile, raise a support ticket, or leave feedback."

	introductionText = "This bot handles support requests: profile verification, support tickets, and feedback. Pick an option from the menu to get started."

	referralLinkText = "Your referral link is available in the main app under Settings → Referrals."

	updatesText = "Follow the announcements channel for product updates and maintenance notices."

	persistenceErrorText = "Something went wrong on our side. Please try again in a moment."
)

func blockedNoticeText(seconds int) string {
	return fmt.Sprintf("You are sending messages too quickly and have been blocked for %d seconds. Please wait before trying again.", seconds)
}

const unblockedNoticeText = "You are unblocked now. Please avoid sending messages too quickly."

const rateLimitedNoticeText = "You're going a little fast. Please wait a moment and try again."

// replyText renders the engine's reply template into user-facing copy.
func replyText(res conversation.Result) string {
	switch res.Reply {
	case conversation.ReplyProfileScreenshotPrompt:
		return "Please send a screenshot of your profile page."
	case conversation.ReplyTonTxScreenshotPrompt:
		return "Got it ✅. Now send a screenshot of your TON transaction."
	case conversation.ReplyTonHashPrompt:
		return "Thanks ✅. Now paste the TON transaction hash as text."
	case conversation.ReplyTonHashReceived:
		return "All set ✅. Your verification details were submitted for review. We will get back to you soon."
	case conversation.ReplyTicketOpened:
		return fmt.Sprintf("Your ticket #%d has been opened 🎫.\n\nSend a screenshot of the issue, or /skip if you don't have one.", res.TicketID)
	case conversation.ReplyIssueDetailsPrompt:
		return "Please describe the issue in a text message."
	case conversation.ReplyIssueDetailsReceived:
		return "Thanks ✅. Your ticket was submitted. Our team will review it shortly."
	case conversation.ReplyFeedbackPrompt:
		return "We'd love to hear from you 💬. Send your feedback as a text message."
	case conversation.ReplyFeedbackReceived:
		return "Thank you for your feedback 🙏."
	case conversation.ReplyInvalidProfileScreenshot:
		return "That doesn't look like a screenshot. Please send your profile screenshot as a photo."
	case conversation.ReplyInvalidTonTxScreenshot:
		return "That doesn't look like a screenshot. Please send your TON transaction screenshot as a photo."
	case conversation.ReplyInvalidTonHash:
		return "Please paste the TON transaction hash as a plain text message."
	case conversation.ReplyInvalidIssueScreenshot:
		return "Please send the issue screenshot as a photo, or /skip to continue without one."
	case conversation.ReplyNoActiveProcess:
		return "There is no active process for this photo. Pick an option from the menu first."
	case conversation.ReplyRestartHint:
		return "I didn't catch that. Use the menu below, or /start to restart."
	case conversation.ReplyCanceled:
		return "Canceled. You're back at the main menu."
	default:
		return ""
	}
}
