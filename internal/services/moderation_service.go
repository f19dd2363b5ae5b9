// Package services – ModerationService
//
// Moderation moves items through their status lifecycle. Two paths exist:
//
//   - Decisions (Approve / Reject): restricted to moderators and admins,
//     record who decided and when, and are terminal until a later promotion
//     or decision overrides them.
//   - Reports: open to every authenticated user, at most one per (item, user)
//     pair. Each report increments the item's counter inside the same
//     transaction that inserts the report row; crossing the threshold flags
//     the item — regardless of its current status, approved included — so a
//     flagged item always drops out of the index on the next sync.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/syncer"
)

// DefaultReportThreshold is the report count at which an item is flagged.
const DefaultReportThreshold = 3

// ModerationService owns item status transitions and report intake.
type ModerationService struct {
	DB        *gorm.DB
	Roles     RoleProvider
	Publisher syncer.Publisher

	// ReportThreshold overrides DefaultReportThreshold when positive.
	ReportThreshold int
}

// ReportRequest is the input to Report.
type ReportRequest struct {
	CallerID string
	ItemID   string
	Reason   string
	Details  string
}

// ReportResult tells the caller what their report did to the item.
type ReportResult struct {
	ReportCount int  `json:"report_count"`
	Flagged     bool `json:"flagged"`
}

// Approve marks the item approved on behalf of callerID. Only moderators and
// admins may call it; the decision stamps approved_by/approved_at and clears
// any earlier rejection record.
func (s *ModerationService) Approve(ctx context.Context, callerID, itemID string) error {
	return s.decide(ctx, callerID, itemID, "Approve", func(it *domain.Item, now time.Time) {
		it.Status = domain.StatusApproved
		it.ApprovedBy = callerID
		it.ApprovedAt = &now
		it.RejectedBy = ""
		it.RejectedAt = nil
		it.RejectionReason = ""
	})
}

// Reject marks the item rejected on behalf of callerID with an optional
// free-text reason. Same gating as Approve.
func (s *ModerationService) Reject(ctx context.Context, callerID, itemID, reason string) error {
	return s.decide(ctx, callerID, itemID, "Reject", func(it *domain.Item, now time.Time) {
		it.Status = domain.StatusRejected
		it.RejectedBy = callerID
		it.RejectedAt = &now
		it.RejectionReason = strings.TrimSpace(reason)
		it.ApprovedBy = ""
		it.ApprovedAt = nil
	})
}

// decide runs one moderation decision: gate on role, mutate the item inside a
// transaction, publish the resulting change.
func (s *ModerationService) decide(ctx context.Context, callerID, itemID, op string, apply func(*domain.Item, time.Time)) error {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, op,
		trace.WithAttributes(attribute.String("item.id", itemID)),
	)
	defer span.End()

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return ErrUnauthenticated
	}
	role, err := s.Roles.Role(ctx, callerID)
	if err != nil {
		return err
	}
	if !domain.ElevatedRole(role) {
		return ErrPermissionDenied
	}

	var before, after *domain.Item
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := repo.GetItem(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		before = cloneItem(it)
		apply(it, time.Now().UTC())
		if err := repo.SaveItem(ctx, tx, it); err != nil {
			return err
		}
		after = it
		return nil
	})
	if err != nil {
		return err
	}
	if s.Publisher != nil {
		s.Publisher.Publish(syncer.ItemChange{Before: before, After: cloneItem(after)})
	}
	return nil
}

// Report files one report against an item.
//
// The (item, reporter) pre-check makes the duplicate case side-effect free;
// the unique index on the reports table backs it against the insert race. The
// report row and the counter increment commit atomically, and the item is
// flagged the moment the new count reaches the threshold — even if the item
// is currently approved, in which case the published change also evicts it
// from the search index.
func (s *ModerationService) Report(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	tr := otel.Tracer("services/ModerationService")
	ctx, span := tr.Start(ctx, "Report",
		trace.WithAttributes(
			attribute.String("item.id", req.ItemID),
			attribute.String("report.reason", req.Reason),
		),
	)
	defer span.End()

	caller := strings.TrimSpace(req.CallerID)
	if caller == "" {
		return nil, ErrUnauthenticated
	}
	if !domain.ValidReportReason(req.Reason) {
		return nil, ErrInvalidReason
	}
	if _, err := repo.GetItem(ctx, s.DB, req.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	dup, err := repo.HasReport(ctx, s.DB, req.ItemID, caller)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateReport
	}

	var (
		result ReportResult
		before *domain.Item
		after  *domain.Item
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := repo.GetItem(ctx, tx, req.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		before = cloneItem(it)

		if err := repo.CreateReport(ctx, tx, &domain.Report{
			ItemID:     req.ItemID,
			ReportedBy: caller,
			Reason:     req.Reason,
			Details:    strings.TrimSpace(req.Details),
		}); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReport
			}
			return err
		}

		it.ReportCount++
		flagged := it.ReportCount >= s.threshold()
		if flagged {
			it.Status = domain.StatusFlagged
		}
		if err := repo.SaveItem(ctx, tx, it); err != nil {
			return err
		}
		after = it
		result = ReportResult{ReportCount: it.ReportCount, Flagged: flagged}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Publisher != nil {
		s.Publisher.Publish(syncer.ItemChange{Before: before, After: cloneItem(after)})
	}
	return &result, nil
}

func (s *ModerationService) threshold() int {
	if s.ReportThreshold > 0 {
		return s.ReportThreshold
	}
	return DefaultReportThreshold
}

// isUniqueViolation matches SQLite's unique-constraint error text, which GORM
// surfaces as a plain error rather than a typed one.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed: unique")
}
