package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ace-portal/enquiry-api/internal/models"
)

func sessionRecords() []models.Enquiry {
	return []models.Enquiry{
		{ID: "e1", Name: "Riya Sharma", Branch: "Computer Science & Engineering", CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "e2", Name: "Aman Verma", Branch: "MBA (Full Time)", CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
}

func TestDashboardSessionStaleSnapshotDiscarded(t *testing.T) {
	session := NewDashboardSession()

	first := session.NextSeq()
	second := session.NextSeq()

	// The later fetch lands first.
	require.True(t, session.ApplySnapshot(second, sessionRecords()))
	// The slower, older fetch must not overwrite it.
	assert.False(t, session.ApplySnapshot(first, nil))
	assert.Len(t, session.View(), 2)
}

func TestDashboardSessionFilterIsPureRecompute(t *testing.T) {
	session := NewDashboardSession()
	require.True(t, session.ApplySnapshot(session.NextSeq(), sessionRecords()))

	session.SetFilter(models.EnquiryFilter{Branch: "MBA (Full Time)"})
	view := session.View()
	require.Len(t, view, 1)
	assert.Equal(t, "e2", view[0].ID)

	// Clearing the filter restores the full snapshot without a refetch.
	session.SetFilter(models.EnquiryFilter{})
	assert.Len(t, session.View(), 2)
}

func TestDashboardSessionSelection(t *testing.T) {
	session := NewDashboardSession()
	require.True(t, session.ApplySnapshot(session.NextSeq(), sessionRecords()))

	_, ok := session.Select("missing")
	assert.False(t, ok)

	enquiry, ok := session.Select("e1")
	require.True(t, ok)
	assert.Equal(t, "Riya Sharma", enquiry.Name)

	selected, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, "e1", selected.ID)

	session.ClearSelection()
	_, ok = session.Selected()
	assert.False(t, ok)
}

func TestDashboardSessionSelectionDroppedWhenRecordGone(t *testing.T) {
	session := NewDashboardSession()
	require.True(t, session.ApplySnapshot(session.NextSeq(), sessionRecords()))
	_, ok := session.Select("e2")
	require.True(t, ok)

	require.True(t, session.ApplySnapshot(session.NextSeq(), sessionRecords()[:1]))
	_, ok = session.Selected()
	assert.False(t, ok)
}
