package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arenamover/arena"
)

func TestDirectionForKey(t *testing.T) {
	tests := []struct {
		key  string
		want arena.Direction
	}{
		{"ArrowUp", arena.DirUp},
		{"ArrowDown", arena.DirDown},
		{"ArrowLeft", arena.DirLeft},
		{"ArrowRight", arena.DirRight},
		{"w", arena.DirUp},
		{"W", arena.DirUp},
		{"s", arena.DirDown},
		{"S", arena.DirDown},
		{"a", arena.DirLeft},
		{"A", arena.DirLeft},
		{"d", arena.DirRight},
		{"D", arena.DirRight},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := DirectionForKey(tt.key)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectionForKey_Ignored(t *testing.T) {
	for _, key := range []string{"", "q", "Enter", "arrowup", "ARROWUP", "Shift", " "} {
		_, ok := DirectionForKey(key)
		assert.False(t, ok, key)
	}
}
