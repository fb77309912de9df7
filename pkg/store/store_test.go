package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuarterKind(t *testing.T) {
	assert.Equal(t, "QUARTER:2024-Q1", QuarterKind("2024-Q1"))
}

func TestQuarterFromKind(t *testing.T) {
	tests := []struct {
		kind string
		want string
		ok   bool
	}{
		{"QUARTER:2024-Q1", "2024-Q1", true},
		{"QUARTER:", "", false},
		{"METADATA", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := QuarterFromKind(tt.kind)
		assert.Equal(t, tt.ok, ok, tt.kind)
		assert.Equal(t, tt.want, got, tt.kind)
	}
}
