package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountDefaultsToNormal(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("BRT", -3*3600))

	account := NewAccount("id-1", "Ana", "ana@x.com", "hash", created)

	assert.Equal(t, RoleNormal, account.Role)
	assert.Equal(t, "2024-03-01T15:30:00.000Z", account.CreatedAt)
}

func TestCreatedAtSortsInTimeOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(1234 * time.Microsecond),
		base.Add(12345 * time.Microsecond),
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
	}

	for i := 1; i < len(times); i++ {
		earlier := NewAccount("a", "A", "a@x.com", "h", times[i-1]).CreatedAt
		later := NewAccount("b", "B", "b@x.com", "h", times[i]).CreatedAt
		assert.Len(t, later, len(earlier))
		assert.Less(t, earlier, later)
	}
}

func TestAccountViewOmitsPassword(t *testing.T) {
	account := Account{
		ID:           "id-1",
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "super-secret-hash",
		Role:         RoleAdmin,
		CreatedAt:    "2024-03-01T15:30:00Z",
	}

	data, err := json.Marshal(account.View())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, string(data), "super-secret-hash")
	assert.Equal(t, "2024-03-01T15:30:00Z", fields["createdAt"])
	assert.Equal(t, "ADMIN", fields["role"])
}

func TestAccountRecordRoundTrip(t *testing.T) {
	account := Account{
		ID:           "id-1",
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "hash",
		Role:         RoleNormal,
		CreatedAt:    "2024-03-01T15:30:00.000Z",
	}

	record, err := account.Record()
	require.NoError(t, err)
	assert.Equal(t, "hash", record.Password)
	assert.True(t, time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC).Equal(record.CreatedAt))
	assert.Equal(t, account, AccountFromRecord(record))

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created_at"`)
}

func TestAccountRecordRejectsBadCreatedAt(t *testing.T) {
	_, err := Account{ID: "id-1", CreatedAt: "yesterday"}.Record()
	assert.ErrorContains(t, err, "invalid createdAt")
}

func TestAccountFromRecordFormatsUTC(t *testing.T) {
	record := AccountRecord{
		ID:        "id-1",
		CreatedAt: time.Date(2024, 3, 1, 12, 30, 0, 5_000_000, time.FixedZone("BRT", -3*3600)),
	}
	assert.Equal(t, "2024-03-01T15:30:00.005Z", AccountFromRecord(record).CreatedAt)
}

func TestTokenPayload(t *testing.T) {
	account := Account{ID: "id-1", Name: "Ana", Role: RoleAdmin}

	payload := account.TokenPayload()

	assert.Equal(t, TokenPayload{ID: "id-1", Name: "Ana", Role: RoleAdmin}, payload)
	assert.True(t, payload.IsAdmin())
	assert.False(t, TokenPayload{Role: RoleNormal}.IsAdmin())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "NORMAL", want: RoleNormal},
		{in: "admin", want: RoleAdmin},
		{in: " Admin ", want: RoleAdmin},
		{in: "root", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
