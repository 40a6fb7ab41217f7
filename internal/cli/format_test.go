package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "expired"},
		{30 * time.Second, "< 1 minute"},
		{time.Minute, "1 minute"},
		{45 * time.Minute, "45 minutes"},
		{time.Hour, "1 hour"},
		{5 * time.Hour, "5 hours"},
		{24 * time.Hour, "1 day"},
		{72 * time.Hour, "3 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), tt.d.String())
	}
}

func TestFormatExpiry(t *testing.T) {
	assert.Equal(t, "-", FormatExpiry(time.Time{}))
	assert.Contains(t, FormatExpiry(time.Now().Add(2*time.Hour+time.Minute)), "in 2 hours")
	assert.Contains(t, FormatExpiry(time.Now().Add(-10*time.Minute)), "expired")
}

func TestNewTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf)
	tbl.AppendHeader([]interface{}{"Field", "Value"})
	tbl.AppendRow([]interface{}{"status", "authenticated"})
	tbl.Render()

	assert.Contains(t, buf.String(), "status")
	assert.Contains(t, buf.String(), "╭")
}
