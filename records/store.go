package records

import "context"

// Store upserts one field at a time, mirroring how the workflows collect
// inputs step by step. Each call loads or creates the record for the user,
// sets the field, and persists.
type Store interface {
	SetProfileImage(ctx context.Context, userID int64, ref string) error
	SetTransactionImage(ctx context.Context, userID int64, ref string) error
	SetTransactionHash(ctx context.Context, userID int64, hash string) error
	SetFeedback(ctx context.Context, userID int64, text string) error

	AttachTicketImage(ctx context.Context, userID, ticketID int64, ref string) error
	SetTicketDetails(ctx context.Context, userID, ticketID int64, details string) error

	GetVerification(ctx context.Context, userID int64) (Verification, bool, error)
	GetTicket(ctx context.Context, userID int64) (Ticket, bool, error)
}
