package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventID(t *testing.T) {
	tests := []struct {
		name string
		uid  string
		want string
	}{
		{"domain suffix stripped", "abc123@events.example.com", "abc123"},
		{"luma style uid", "evt-abc123@events.lu.ma", "evt-abc123"},
		{"no at sign passes through", "plain-uid", "plain-uid"},
		{"only first at sign splits", "a@b@c", "a"},
		{"leading at sign", "@domain.com", ""},
		{"empty uid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EventID(tt.uid)
			assert.Equal(t, tt.want, got)
			// Deterministic: repeated calls agree.
			assert.Equal(t, got, EventID(tt.uid))
		})
	}
}
