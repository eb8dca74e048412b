package id

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIDFormat(t *testing.T) {
	uid := UID("AppProcess")
	parts := strings.SplitN(uid, ":", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "appprocess", parts[0])
	assert.Len(t, parts[1], 26)
}

func TestUIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		uid := UID("window")
		assert.False(t, seen[uid])
		seen[uid] = true
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	before := time.Now().Add(-time.Second)
	uid := UID("shell")
	after := time.Now().Add(time.Second)

	ts, err := Timestamp(uid)
	require.NoError(t, err)
	assert.True(t, ts.After(before) && ts.Before(after))
}

func TestTimestampRejectsBareID(t *testing.T) {
	_, err := Timestamp("noprefix")
	assert.Error(t, err)
}

func TestNewWorkerIDUnique(t *testing.T) {
	a, b := NewWorkerID(), NewWorkerID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
