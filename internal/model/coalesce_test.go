package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name string
		in   []*float64
		want *float64
	}{
		{"first present", []*float64{ptr(5), ptr(7)}, ptr(5)},
		{"nil skipped", []*float64{nil, ptr(7)}, ptr(7)},
		{"zero skipped", []*float64{ptr(0), ptr(7)}, ptr(7)},
		{"negative kept", []*float64{ptr(-3), ptr(7)}, ptr(-3)},
		{"all missing", []*float64{nil, ptr(0)}, nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coalesce(tt.in...)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestValueOr(t *testing.T) {
	assert.Equal(t, 4.0, ValueOr(ptr(4), 9))
	assert.Equal(t, 0.0, ValueOr(ptr(0), 9))
	assert.Equal(t, 9.0, ValueOr(nil, 9))
}
