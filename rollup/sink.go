package rollup

import "sync"

// NoticeSink consumes success envelopes, e.g. by posting them back to the
// rollup host.
type NoticeSink interface {
	SendNotice(*Notice) error
}

// ReportSink consumes failure envelopes.
type ReportSink interface {
	SendReport(*Report) error
}

// MemorySink stores envelopes in memory, useful for testing.
type MemorySink struct {
	mu      sync.RWMutex
	notices []*Notice
	reports []*Report
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		notices: make([]*Notice, 0),
		reports: make([]*Report, 0),
	}
}

// SendNotice appends a notice to the in-memory slice.
func (s *MemorySink) SendNotice(n *Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

// SendReport appends a report to the in-memory slice.
func (s *MemorySink) SendReport(r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// NoticeCount returns the number of notices stored.
func (s *MemorySink) NoticeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notices)
}

// ReportCount returns the number of reports stored.
func (s *MemorySink) ReportCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// Notice returns the notice at the specified index.
func (s *MemorySink) Notice(index int) *Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.notices[index]
}

// Report returns the report at the specified index.
func (s *MemorySink) Report(index int) *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reports[index]
}

// DiscardSink drops every envelope, useful for benchmarking and one-shot
// callers that only want the return values.
type DiscardSink struct {
}

// NewDiscardSink creates a new DiscardSink.
func NewDiscardSink() *DiscardSink {
	return &DiscardSink{}
}

// SendNotice does nothing.
func (s *DiscardSink) SendNotice(n *Notice) error {
	return nil
}

// SendReport does nothing.
func (s *DiscardSink) SendReport(r *Report) error {
	return nil
}
