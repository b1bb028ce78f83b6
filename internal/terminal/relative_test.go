package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTime(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		offset time.Duration
		want   string
	}{
		{0, "now"},
		{-30 * time.Second, "30 seconds ago"},
		{-5 * time.Minute, "5 minutes ago"},
		{-90 * time.Minute, "1 hour ago"},
		{-3 * time.Hour, "3 hours ago"},
		{-50 * time.Hour, "2 days ago"},
		{time.Hour, "1 hour from now"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(base.Add(tt.offset), base))
		})
	}
}

func TestEvery(t *testing.T) {
	assert.Equal(t, "5 minutes", Every(5*time.Minute))
	assert.Equal(t, "1 minute", Every(time.Minute))
	assert.Equal(t, "2 hours", Every(2*time.Hour))
	assert.Equal(t, "90 seconds", Every(90*time.Second))
	assert.Equal(t, "1.5s", Every(1500*time.Millisecond))
}
