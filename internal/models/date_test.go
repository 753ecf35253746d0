package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(b))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &parsed))
	assert.True(t, parsed.Equal(d))

	assert.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &parsed))
}

func TestDateOfTruncatesToUTCDay(t *testing.T) {
	loc := time.FixedZone("ahead", 11*3600)
	d := DateOf(time.Date(2024, time.March, 6, 1, 30, 0, 0, loc))
	assert.Equal(t, "2024-03-05", d.String())
}

func TestDateScanFromTime(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.Equal(NewDate(2024, time.March, 5)))
}
