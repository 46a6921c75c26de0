package store

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestToPgText(t *testing.T) {
	assert.Equal(t, pgtype.Text{String: "hello", Valid: true}, ToPgText("  hello  "))
	assert.False(t, ToPgText("").Valid)
	assert.False(t, ToPgText("   ").Valid)
}

func TestToPgUUIDRoundTrip(t *testing.T) {
	const id = "a2b5c3c2-63a1-4a4e-9a7d-0f1f2e3d4c5b"

	u := ToPgUUID(id)
	assert.True(t, u.Valid)
	assert.Equal(t, id, PgUUIDToString(u))

	assert.False(t, ToPgUUID("").Valid)
	assert.False(t, ToPgUUID("not-a-uuid").Valid)
	assert.Equal(t, "", PgUUIDToString(pgtype.UUID{}))
}

func TestToPgTimestamptz(t *testing.T) {
	ts := ToPgTimestamptz("2024-01-15T09:00:00Z")
	assert.True(t, ts.Valid)
	assert.True(t, ts.Time.Equal(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))

	assert.False(t, ToPgTimestamptz("").Valid)
	assert.False(t, ToPgTimestamptz("2024-01-15").Valid)
}
