package slack

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Time(t *testing.T) {
	tests := []struct {
		ts      Timestamp
		want    time.Time
		wantErr bool
	}{
		{ts: "1716700028.123456", want: time.Unix(1716700028, 123456000).UTC()},
		{ts: "1716700028", want: time.Unix(1716700028, 0).UTC()},
		{ts: "1716700028.5", want: time.Unix(1716700028, 500000000).UTC()},
		{ts: "", wantErr: true},
		{ts: "abc.123", wantErr: true},
		{ts: "1716700028.x", wantErr: true},
	}

	for _, tt := range tests {
		got, err := tt.ts.Time()
		if tt.wantErr {
			assert.Error(t, err, "ts=%q", tt.ts)
			continue
		}
		require.NoError(t, err, "ts=%q", tt.ts)
		assert.True(t, tt.want.Equal(got), "ts=%q got %v", tt.ts, got)
	}
}

func TestUnixTime_JSON(t *testing.T) {
	var v struct {
		Created UnixTime `json:"created"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"created":1449252889}`), &v))
	assert.Equal(t, int64(1449252889), v.Created.Unix())

	out, err := json.Marshal(v.Created)
	require.NoError(t, err)
	assert.Equal(t, "1449252889", string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"created":"soon"}`), &v))
}
