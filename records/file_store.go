package records

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quailyquaily/supportbot/internal/fsstore"
	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// FileStore writes each record as a markdown file with YAML frontmatter for
// the structured fields and the free-text portion (feedback, issue details)
// as the body, so operators can read submissions without tooling.
type FileStore struct {
	root string
	mu   sync.Mutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: strings.TrimSpace(root)}
}

func (s *FileStore) SetProfileImage(ctx context.Context, userID int64, ref string) error {
	return s.updateVerification(ctx, userID, func(v *Verification) {
		v.ProfileImage = strings.TrimSpace(ref)
	})
}

func (s *FileStore) SetTransactionImage(ctx context.Context, userID int64, ref string) error {
	return s.updateVerification(ctx, userID, func(v *Verification) {
		v.TransactionImage = strings.TrimSpace(ref)
	})
}

func (s *FileStore) SetTransactionHash(ctx context.Context, userID int64, hash string) error {
	return s.updateVerification(ctx, userID, func(v *Verification) {
		v.TransactionHash = strings.TrimSpace(hash)
	})
}

func (s *FileStore) SetFeedback(ctx context.Context, userID int64, text string) error {
	return s.updateVerification(ctx, userID, func(v *Verification) {
		v.Feedback = strings.TrimSpace(text)
	})
}

func (s *FileStore) AttachTicketImage(ctx context.Context, userID, ticketID int64, ref string) error {
	return s.updateTicket(ctx, userID, ticketID, func(t *Ticket) {
		t.IssueImage = strings.TrimSpace(ref)
	})
}

func (s *FileStore) SetTicketDetails(ctx context.Context, userID, ticketID int64, details string) error {
	return s.updateTicket(ctx, userID, ticketID, func(t *Ticket) {
		t.IssueDetails = strings.TrimSpace(details)
	})
}

func (s *FileStore) GetVerification(ctx context.Context, userID int64) (Verification, bool, error) {
	if err := ctx.Err(); err != nil {
		return Verification{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadVerificationLocked(userID)
}

func (s *FileStore) GetTicket(ctx context.Context, userID int64) (Ticket, bool, error) {
	if err := ctx.Err(); err != nil {
		return Ticket{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTicketLocked(userID)
}

func (s *FileStore) updateVerification(ctx context.Context, userID int64, mutate func(*Verification)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withUserLock(ctx, userID, func() error {
		rec, found, err := s.loadVerificationLocked(userID)
		if err != nil {
			return err
		}
		if !found {
			rec = Verification{UserID: userID}
		}
		mutate(&rec)
		rec.UserID = userID
		rec.UpdatedAt = time.Now().UTC()

		content, err := renderFrontmatterDoc(rec, rec.Feedback)
		if err != nil {
			return err
		}
		return fsstore.WriteTextAtomic(s.verificationPath(userID), content, fsstore.FileOptions{})
	})
}

func (s *FileStore) updateTicket(ctx context.Context, userID, ticketID int64, mutate func(*Ticket)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withUserLock(ctx, userID, func() error {
		rec, found, err := s.loadTicketLocked(userID)
		if err != nil {
			return err
		}
		if !found {
			rec = Ticket{UserID: userID}
		}
		mutate(&rec)
		rec.UserID = userID
		if ticketID > 0 {
			rec.TicketID = ticketID
		}
		rec.UpdatedAt = time.Now().UTC()

		content, err := renderFrontmatterDoc(rec, rec.IssueDetails)
		if err != nil {
			return err
		}
		return fsstore.WriteTextAtomic(s.ticketPath(userID), content, fsstore.FileOptions{})
	})
}

func (s *FileStore) loadVerificationLocked(userID int64) (Verification, bool, error) {
	content, found, err := fsstore.ReadText(s.verificationPath(userID))
	if err != nil || !found {
		return Verification{}, false, err
	}
	var rec Verification
	body, err := parseFrontmatterDoc(content, &rec)
	if err != nil {
		return Verification{}, false, fmt.Errorf("parse verification %d: %w", userID, err)
	}
	rec.Feedback = body
	return rec, true, nil
}

func (s *FileStore) loadTicketLocked(userID int64) (Ticket, bool, error) {
	content, found, err := fsstore.ReadText(s.ticketPath(userID))
	if err != nil || !found {
		return Ticket{}, false, err
	}
	var rec Ticket
	body, err := parseFrontmatterDoc(content, &rec)
	if err != nil {
		return Ticket{}, false, fmt.Errorf("parse ticket %d: %w", userID, err)
	}
	rec.IssueDetails = body
	return rec, true, nil
}

func (s *FileStore) withUserLock(ctx context.Context, userID int64, fn func() error) error {
	lockPath, err := fsstore.BuildLockPath(filepath.Join(s.root, ".fslocks"), fmt.Sprintf("records.%d", userID))
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, lockPath, fn)
}

func (s *FileStore) verificationPath(userID int64) string {
	return filepath.Join(s.root, "verifications", fmt.Sprintf("%d.md", userID))
}

func (s *FileStore) ticketPath(userID int64) string {
	return filepath.Join(s.root, "tickets", fmt.Sprintf("%d.md", userID))
}

func renderFrontmatterDoc(meta any, body string) (string, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString(frontmatterFence)
	b.WriteString("\n")
	b.Write(data)
	b.WriteString(frontmatterFence)
	b.WriteString("\n")
	body = strings.TrimSpace(body)
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func parseFrontmatterDoc(content string, meta any) (string, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	if !strings.HasPrefix(content, frontmatterFence) {
		return "", fmt.Errorf("missing frontmatter fence")
	}
	rest := strings.TrimPrefix(content, frontmatterFence)
	rest = strings.TrimPrefix(rest, "\n")
	idx := strings.Index(rest, "\n"+frontmatterFence)
	if idx < 0 {
		return "", fmt.Errorf("unterminated frontmatter")
	}
	front := rest[:idx+1]
	body := ""
	if off := idx + 1 + len(frontmatterFence); off < len(rest) {
		body = rest[off:]
	}
	if err := yaml.Unmarshal([]byte(front), meta); err != nil {
		return "", fmt.Errorf("decode frontmatter: %w", err)
	}
	return strings.TrimSpace(body), nil
}
