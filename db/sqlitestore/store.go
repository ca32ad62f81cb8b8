// Package sqlitestore implements the abuseguard, conversation, and records
// store contracts on top of the gorm sqlite backend.
package sqlitestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quailyquaily/supportbot/abuseguard"
	"github.com/quailyquaily/supportbot/conversation"
	"github.com/quailyquaily/supportbot/db/models"
	"github.com/quailyquaily/supportbot/records"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	gdb *gorm.DB
}

func New(gdb *gorm.DB) *Store {
	return &Store{gdb: gdb}
}

// AbuseStore / ConversationStore / RecordStore return interface views so the
// wiring code reads like the file-store construction.
func (s *Store) AbuseStore() abuseguard.Store          { return (*abuseStore)(s) }
func (s *Store) ConversationStore() conversation.Store { return (*conversationStore)(s) }
func (s *Store) RecordStore() records.Store            { return (*recordStore)(s) }

type abuseStore Store

func (s *abuseStore) Get(ctx context.Context, userID int64) (abuseguard.Record, bool, error) {
	var row models.RateLimit
	err := s.gdb.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return abuseguard.Record{}, false, nil
	}
	if err != nil {
		return abuseguard.Record{}, false, fmt.Errorf("sqlitestore: load rate limit %d: %w", userID, err)
	}
	return abuseguard.Record{
		UserID:            row.UserID,
		LastInteractionAt: timeOrZero(row.LastInteractionAt),
		BlockedUntil:      timeOrZero(row.BlockedUntil),
		CommandCount:      row.CommandCount,
		LastNotifiedAt:    timeOrZero(row.LastNotifiedAt),
	}, true, nil
}

func (s *abuseStore) Put(ctx context.Context, record abuseguard.Record) error {
	row := models.RateLimit{
		UserID:            record.UserID,
		LastInteractionAt: timePtr(record.LastInteractionAt),
		BlockedUntil:      timePtr(record.BlockedUntil),
		CommandCount:      record.CommandCount,
		LastNotifiedAt:    timePtr(record.LastNotifiedAt),
	}
	err := s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlitestore: save rate limit %d: %w", record.UserID, err)
	}
	return nil
}

type conversationStore Store

func (s *conversationStore) Get(ctx context.Context, userID int64) (conversation.State, bool, error) {
	var row models.UserState
	err := s.gdb.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return conversation.State{}, false, nil
	}
	if err != nil {
		return conversation.State{}, false, fmt.Errorf("sqlitestore: load state %d: %w", userID, err)
	}
	var artifacts []string
	if strings.TrimSpace(row.Artifacts) != "" {
		if err := json.Unmarshal([]byte(row.Artifacts), &artifacts); err != nil {
			return conversation.State{}, false, fmt.Errorf("sqlitestore: decode artifacts %d: %w", userID, err)
		}
	}
	return conversation.State{
		UserID:    row.UserID,
		Step:      row.Step,
		Artifacts: artifacts,
		TicketID:  row.TicketID,
	}, true, nil
}

func (s *conversationStore) Put(ctx context.Context, state conversation.State) error {
	artifacts := ""
	if len(state.Artifacts) > 0 {
		data, err := json.Marshal(state.Artifacts)
		if err != nil {
			return fmt.Errorf("sqlitestore: encode artifacts %d: %w", state.UserID, err)
		}
		artifacts = string(data)
	}
	row := models.UserState{
		UserID:    state.UserID,
		Step:      state.Step,
		Artifacts: artifacts,
		TicketID:  state.TicketID,
	}
	err := s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlitestore: save state %d: %w", state.UserID, err)
	}
	return nil
}

type recordStore Store

func (s *recordStore) SetProfileImage(ctx context.Context, userID int64, ref string) error {
	return s.updateVerification(ctx, userID, func(v *models.Verification) {
		v.ProfileImage = strings.TrimSpace(ref)
	})
}

func (s *recordStore) SetTransactionImage(ctx context.Context, userID int64, ref string) error {
	return s.updateVerification(ctx, userID, func(v *models.Verification) {
		v.TransactionImage = strings.TrimSpace(ref)
	})
}

func (s *recordStore) SetTransactionHash(ctx context.Context, userID int64, hash string) error {
	return s.updateVerification(ctx, userID, func(v *models.Verification) {
		v.TransactionHash = strings.TrimSpace(hash)
	})
}

func (s *recordStore) SetFeedback(ctx context.Context, userID int64, text string) error {
	return s.updateVerification(ctx, userID, func(v *models.Verification) {
		v.Feedback = strings.TrimSpace(text)
	})
}

func (s *recordStore) AttachTicketImage(ctx context.Context, userID, ticketID int64, ref string) error {
	return s.updateTicket(ctx, userID, ticketID, func(t *models.Ticket) {
		t.IssueImage = strings.TrimSpace(ref)
	})
}

func (s *recordStore) SetTicketDetails(ctx context.Context, userID, ticketID int64, details string) error {
	return s.updateTicket(ctx, userID, ticketID, func(t *models.Ticket) {
		t.IssueDetails = strings.TrimSpace(details)
	})
}

func (s *recordStore) GetVerification(ctx context.Context, userID int64) (records.Verification, bool, error) {
	var row models.Verification
	err := s.gdb.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return records.Verification{}, false, nil
	}
	if err != nil {
		return records.Verification{}, false, fmt.Errorf("sqlitestore: load verification %d: %w", userID, err)
	}
	return records.Verification{
		UserID:           row.UserID,
		ProfileImage:     row.ProfileImage,
		TransactionImage: row.TransactionImage,
		TransactionHash:  row.TransactionHash,
		Feedback:         row.Feedback,
		UpdatedAt:        row.UpdatedAt,
	}, true, nil
}

func (s *recordStore) GetTicket(ctx context.Context, userID int64) (records.Ticket, bool, error) {
	var row models.Ticket
	err := s.gdb.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return records.Ticket{}, false, nil
	}
	if err != nil {
		return records.Ticket{}, false, fmt.Errorf("sqlitestore: load ticket %d: %w", userID, err)
	}
	return records.Ticket{
		UserID:       row.UserID,
		TicketID:     row.TicketID,
		IssueImage:   row.IssueImage,
		IssueDetails: row.IssueDetails,
		UpdatedAt:    row.UpdatedAt,
	}, true, nil
}

func (s *recordStore) updateVerification(ctx context.Context, userID int64, mutate func(*models.Verification)) error {
	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Verification
		err := tx.First(&row, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.Verification{UserID: userID}
		} else if err != nil {
			return err
		}
		mutate(&row)
		row.UserID = userID
		row.UpdatedAt = time.Now().UTC()
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("sqlitestore: save verification %d: %w", userID, err)
	}
	return nil
}

func (s *recordStore) updateTicket(ctx context.Context, userID, ticketID int64, mutate func(*models.Ticket)) error {
	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Ticket
		err := tx.First(&row, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.Ticket{UserID: userID}
		} else if err != nil {
			return err
		}
		mutate(&row)
		row.UserID = userID
		if ticketID > 0 {
			row.TicketID = ticketID
		}
		row.UpdatedAt = time.Now().UTC()
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("sqlitestore: save ticket %d: %w", userID, err)
	}
	return nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
