package moderation

import (
	"errors"
	"testing"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func newReport(t *testing.T, target TargetType) *Report {
	t.Helper()
	r, err := NewReport(uuid.New(), target, uuid.New(), ReasonSpam, "")
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func TestNewReport(t *testing.T) {
	reporter := uuid.New()

	r, err := NewReport(reporter, TargetListing, uuid.New(), ReasonFraud, " fake address ")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, ActionNone, r.Resolution)
	assert.Equal(t, "fake address", r.Description)
	require.Len(t, r.GetDomainEvents(), 1)

	_, err = NewReport(reporter, TargetUser, reporter, ReasonSpam, "")
	assert.Equal(t, "INVALID_INPUT", codeOf(err))

	_, err = NewReport(reporter, "comment", uuid.New(), ReasonSpam, "")
	assert.Equal(t, "INVALID_TARGET", codeOf(err))

	_, err = NewReport(reporter, TargetReview, uuid.New(), "rude", "")
	assert.Equal(t, "INVALID_REASON", codeOf(err))

	_, err = NewReport(reporter, TargetReview, uuid.New(), ReasonOther, "  ")
	assert.Equal(t, "DESCRIPTION_REQUIRED", codeOf(err))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInvestigating, true},
		{StatusPending, StatusResolved, true},
		{StatusPending, StatusDismissed, true},
		{StatusInvestigating, StatusResolved, true},
		{StatusInvestigating, StatusDismissed, true},
		{StatusInvestigating, StatusPending, false},
		{StatusInvestigating, StatusInvestigating, false},
		{StatusResolved, StatusPending, false},
		{StatusResolved, StatusDismissed, false},
		{StatusDismissed, StatusInvestigating, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestReport_Lifecycle(t *testing.T) {
	admin := uuid.New()

	t.Run("investigate then resolve with action", func(t *testing.T) {
		r := newReport(t, TargetReview)
		require.NoError(t, r.StartInvestigation(admin))
		assert.Equal(t, StatusInvestigating, r.Status)
		assert.Equal(t, admin, *r.AssigneeID)

		require.NoError(t, r.Resolve(admin, ActionContentHidden, "abusive language"))
		assert.Equal(t, StatusResolved, r.Status)
		assert.Equal(t, ActionContentHidden, r.Resolution)
		assert.NotNil(t, r.ResolvedAt)

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		ev := events[0].(*ReportResolvedEvent)
		assert.Equal(t, ActionContentHidden, ev.Action)
		assert.Equal(t, r.TargetID, ev.TargetID)
	})

	t.Run("resolve directly from pending defaults to no action", func(t *testing.T) {
		r := newReport(t, TargetListing)
		require.NoError(t, r.Resolve(admin, "", "fixed by owner"))
		assert.Equal(t, ActionNone, r.Resolution)
		assert.Equal(t, admin, *r.AssigneeID)
	})

	t.Run("action must match target", func(t *testing.T) {
		r := newReport(t, TargetListing)
		assert.Equal(t, "INVALID_ACTION", codeOf(r.Resolve(admin, ActionContentHidden, "")))
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("dismiss emits no enforcement event", func(t *testing.T) {
		r := newReport(t, TargetUser)
		require.NoError(t, r.Dismiss(admin, "not a violation"))
		assert.Equal(t, StatusDismissed, r.Status)
		assert.Empty(t, r.GetDomainEvents())
	})

	t.Run("terminal states reject further moves", func(t *testing.T) {
		r := newReport(t, TargetUser)
		require.NoError(t, r.Dismiss(admin, ""))
		assert.Equal(t, "INVALID_STATE", codeOf(r.StartInvestigation(admin)))
		assert.Equal(t, "INVALID_STATE", codeOf(r.Resolve(admin, ActionNone, "")))
		assert.Equal(t, "INVALID_STATE", codeOf(r.Dismiss(admin, "")))
	})

	t.Run("cannot start investigating twice", func(t *testing.T) {
		r := newReport(t, TargetUser)
		require.NoError(t, r.StartInvestigation(admin))
		assert.Equal(t, "INVALID_STATE", codeOf(r.StartInvestigation(admin)))
	})
}
