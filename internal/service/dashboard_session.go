package service

import (
	"sync"

	"github.com/ace-portal/enquiry-api/internal/models"
)

// DashboardSession holds one dashboard's working state: the full record
// snapshot, the active filter and the selected record. Filtering is a pure
// recomputation over the held snapshot, so changing the filter never needs
// another fetch.
//
// Snapshots carry a sequence number taken from NextSeq before the fetch
// starts. ApplySnapshot rejects any snapshot older than the last applied
// one, so a slow earlier fetch can never overwrite fresher data.
type DashboardSession struct {
	mu       sync.Mutex
	seq      int64
	applied  int64
	records  []models.Enquiry
	filter   models.EnquiryFilter
	selected string
}

// NewDashboardSession returns an empty session.
func NewDashboardSession() *DashboardSession {
	return &DashboardSession{}
}

// NextSeq reserves the sequence number for an upcoming snapshot fetch.
func (s *DashboardSession) NextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// ApplySnapshot installs a fetched record set. Snapshots arriving out of
// order are discarded and false is returned.
func (s *DashboardSession) ApplySnapshot(seq int64, records []models.Enquiry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return false
	}
	s.applied = seq
	s.records = make([]models.Enquiry, len(records))
	copy(s.records, records)
	if s.selected != "" && s.findLocked(s.selected) == nil {
		s.selected = ""
	}
	return true
}

// SetFilter replaces the active filter. The view is derived on read, so no
// recomputation happens here.
func (s *DashboardSession) SetFilter(filter models.EnquiryFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

// Filter returns the active filter.
func (s *DashboardSession) Filter() models.EnquiryFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// View returns the held records narrowed by the active filter, preserving
// snapshot order.
func (s *DashboardSession) View() []models.Enquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.FilterEnquiries(s.records, s.filter)
}

// Select marks a record as the detail-view selection. Returns false when
// the id is not in the current snapshot.
func (s *DashboardSession) Select(id string) (*models.Enquiry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	enquiry := s.findLocked(id)
	if enquiry == nil {
		return nil, false
	}
	s.selected = id
	return enquiry, true
}

// Selected returns the current detail-view selection, if any.
func (s *DashboardSession) Selected() (*models.Enquiry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return nil, false
	}
	enquiry := s.findLocked(s.selected)
	if enquiry == nil {
		return nil, false
	}
	return enquiry, true
}

// ClearSelection drops the detail-view selection.
func (s *DashboardSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

func (s *DashboardSession) findLocked(id string) *models.Enquiry {
	for i := range s.records {
		if s.records[i].ID == id {
			e := s.records[i]
			return &e
		}
	}
	return nil
}
