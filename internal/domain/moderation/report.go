package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TargetType is the kind of content being reported
type TargetType string

const (
	TargetListing TargetType = "listing"
	TargetReview  TargetType = "review"
	TargetUser    TargetType = "user"
)

// IsValid reports whether t is a known target type
func (t TargetType) IsValid() bool {
	switch t {
	case TargetListing, TargetReview, TargetUser:
		return true
	}
	return false
}

// Reason is the reporter's category for the complaint
type Reason string

const (
	ReasonSpam          Reason = "spam"
	ReasonInappropriate Reason = "inappropriate"
	ReasonFraud         Reason = "fraud"
	ReasonHarassment    Reason = "harassment"
	ReasonIncorrectInfo Reason = "incorrect_info"
	ReasonOther         Reason = "other"
)

// IsValid reports whether r is a known reason
func (r Reason) IsValid() bool {
	switch r {
	case ReasonSpam, ReasonInappropriate, ReasonFraud, ReasonHarassment, ReasonIncorrectInfo, ReasonOther:
		return true
	}
	return false
}

// Status is the moderation lifecycle state
type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusDismissed     Status = "dismissed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// IsOpen reports whether the report still needs attention
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInvestigating
}

// Action is what the moderator did when resolving a report
type Action string

const (
	ActionNone             Action = "none"
	ActionContentHidden    Action = "content_hidden"
	ActionListingSuspended Action = "listing_suspended"
	ActionUserSuspended    Action = "user_suspended"
)

// AppliesTo reports whether the action makes sense for the target type
func (a Action) AppliesTo(t TargetType) bool {
	switch a {
	case ActionNone:
		return true
	case ActionContentHidden:
		return t == TargetReview
	case ActionListingSuspended:
		return t == TargetListing
	case ActionUserSuspended:
		return t == TargetUser
	}
	return false
}

// transitions lists the allowed status moves; terminal states have no entry
var transitions = map[Status][]Status{
	StatusPending:       {StatusInvestigating, StatusResolved, StatusDismissed},
	StatusInvestigating: {StatusResolved, StatusDismissed},
}

// CanTransition reports whether from -> to is allowed
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const (
	maxDescription = 2000
	maxNote        = 2000
)

// Report is a moderation ticket about a listing, review or user
type Report struct {
	shared.BaseAggregateRoot
	ReporterID     uuid.UUID
	TargetType     TargetType
	TargetID       uuid.UUID
	Reason         Reason
	Description    string
	Status         Status
	AssigneeID     *uuid.UUID
	Resolution     Action
	ResolutionNote string
	ResolvedAt     *time.Time
}

// NewReport files a pending report
func NewReport(reporterID uuid.UUID, targetType TargetType, targetID uuid.UUID, reason Reason, description string) (*Report, error) {
	if !targetType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target type must be listing, review or user")
	}
	if targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target is required")
	}
	if targetType == TargetUser && targetID == reporterID {
		return nil, shared.NewDomainError("INVALID_INPUT", "You cannot report yourself")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", "Unknown report reason")
	}
	description = strings.TrimSpace(description)
	if reason == ReasonOther && description == "" {
		return nil, shared.NewDomainError("DESCRIPTION_REQUIRED", "Please describe the problem")
	}
	if len([]rune(description)) > maxDescription {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description is too long")
	}

	r := &Report{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReporterID:        reporterID,
		TargetType:        targetType,
		TargetID:          targetID,
		Reason:            reason,
		Description:       description,
		Status:            StatusPending,
		Resolution:        ActionNone,
	}
	r.AddDomainEvent(NewReportFiledEvent(r))
	return r, nil
}

// StartInvestigation assigns the report to an admin
func (r *Report) StartInvestigation(adminID uuid.UUID) error {
	if err := r.checkTransition(StatusInvestigating); err != nil {
		return err
	}
	r.Status = StatusInvestigating
	r.AssigneeID = &adminID
	r.IncrementVersion()
	return nil
}

// Resolve closes the report with an enforcement action
func (r *Report) Resolve(adminID uuid.UUID, action Action, note string) error {
	if err := r.checkTransition(StatusResolved); err != nil {
		return err
	}
	if action == "" {
		action = ActionNone
	}
	if !action.AppliesTo(r.TargetType) {
		return shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Action %s cannot be applied to a %s", action, r.TargetType))
	}
	if err := r.close(adminID, StatusResolved, note); err != nil {
		return err
	}
	r.Resolution = action
	r.AddDomainEvent(NewReportResolvedEvent(r))
	return nil
}

// Dismiss closes the report without action
func (r *Report) Dismiss(adminID uuid.UUID, note string) error {
	if err := r.checkTransition(StatusDismissed); err != nil {
		return err
	}
	if err := r.close(adminID, StatusDismissed, note); err != nil {
		return err
	}
	r.Resolution = ActionNone
	return nil
}

func (r *Report) close(adminID uuid.UUID, status Status, note string) error {
	note = strings.TrimSpace(note)
	if len([]rune(note)) > maxNote {
		return shared.NewDomainError("INVALID_NOTE", "Resolution note is too long")
	}
	now := time.Now()
	r.Status = status
	r.ResolutionNote = note
	r.ResolvedAt = &now
	if r.AssigneeID == nil {
		r.AssigneeID = &adminID
	}
	r.IncrementVersion()
	return nil
}

func (r *Report) checkTransition(to Status) error {
	if !CanTransition(r.Status, to) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move report from %s to %s", r.Status, to))
	}
	return nil
}
