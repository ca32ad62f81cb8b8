// Package records persists the support artifacts collected by the
// conversation workflows: profile-verification submissions, issue tickets,
// and free-form feedback, all keyed by user id.
package records

import "time"

type Verification struct {
	UserID           int64     `yaml:"user_id"`
	ProfileImage     string    `yaml:"profile_image,omitempty"`
	TransactionImage string    `yaml:"ton_transaction_image,omitempty"`
	TransactionHash  string    `yaml:"ton_transaction_hash,omitempty"`
	UpdatedAt        time.Time `yaml:"updated_at,omitempty"`

	// Feedback is stored as the document body, not frontmatter.
	Feedback string `yaml:"-"`
}

type Ticket struct {
	UserID     int64     `yaml:"user_id"`
	TicketID   int64     `yaml:"ticket_id"`
	IssueImage string    `yaml:"issue_image,omitempty"`
	UpdatedAt  time.Time `yaml:"updated_at,omitempty"`

	// IssueDetails is stored as the document body, not frontmatter.
	IssueDetails string `yaml:"-"`
}
