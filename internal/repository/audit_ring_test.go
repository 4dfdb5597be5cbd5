package repository

import (
	"fmt"
	"testing"

	"DeskStream/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRingEvictsOldestFirst(t *testing.T) {
	r := newAuditRing(3)
	for i := 1; i <= 5; i++ {
		r.push(models.AuditLogEntry{ID: fmt.Sprint(i)})
	}

	got := r.newestFirst()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"5", "4", "3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestAuditRingPartial(t *testing.T) {
	r := newAuditRing(0)
	assert.Len(t, r.buf, DefaultLogCapacity)

	r.push(models.AuditLogEntry{ID: "a"})
	r.push(models.AuditLogEntry{ID: "b"})
	got := r.newestFirst()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}
