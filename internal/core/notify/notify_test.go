package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		n     Notification
		level Level
	}{
		{n: Infof("loaded %d rows", 3), level: LevelInfo},
		{n: Warnf("loaded %d rows", 3), level: LevelWarning},
		{n: Errorf("loaded %d rows", 3), level: LevelError},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.level, tt.n.Level)
			assert.Equal(t, "loaded 3 rows", tt.n.Message)
			assert.False(t, tt.n.CreatedAt.IsZero())
		})
	}
}
