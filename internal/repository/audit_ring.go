package repository

import "DeskStream/internal/domain/models"

// DefaultLogCapacity is the number of audit entries kept.
const DefaultLogCapacity = 200

// auditRing is a fixed-capacity FIFO of audit entries. Not safe for
// concurrent use; StateStore guards it.
type auditRing struct {
	buf   []models.AuditLogEntry
	start int
	size  int
}

func newAuditRing(capacity int) *auditRing {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &auditRing{buf: make([]models.AuditLogEntry, capacity)}
}

// push appends e, evicting the oldest entry when full.
func (r *auditRing) push(e models.AuditLogEntry) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

// newestFirst copies the entries, most recent first.
func (r *auditRing) newestFirst() []models.AuditLogEntry {
	out := make([]models.AuditLogEntry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+r.size-1-i)%len(r.buf)]
	}
	return out
}

func (r *auditRing) len() int { return r.size }
