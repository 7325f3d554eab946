package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern any
		value   any
		want    any
	}{
		{name: "match", pattern: "^al", value: "alice", want: true},
		{name: "no match", pattern: "^al", value: "bob", want: false},
		{name: "non string value", pattern: "^4", value: int64(42), want: true},
		{name: "null value", pattern: "^al", value: nil, want: nil},
		{name: "null pattern", pattern: nil, value: "alice", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := match(tt.pattern, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := match("(", "x")
	assert.Error(t, err)
}
