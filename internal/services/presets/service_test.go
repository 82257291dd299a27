package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuiltin(t *testing.T) {
	s, err := NewService("", arbor.NewLogger())
	require.NoError(t, err)

	presets := s.List()
	require.Len(t, presets, 4)
	assert.Equal(t, "default", presets[0].ID)
	assert.Equal(t, 40.0, presets[0].Tech)
	assert.Equal(t, 60.0, presets[0].Fund)

	trading, ok := s.Get("trading")
	require.True(t, ok)
	assert.Equal(t, "단기 트레이딩", trading.Name)
	assert.Equal(t, 70.0, trading.Weights().Technical)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	// List returns a copy
	presets[0].Tech = 99
	again, _ := s.Get("default")
	assert.Equal(t, 40.0, again.Tech)
}

func TestLoadFile(t *testing.T) {
	path := writePresets(t, `
presets:
  - id: momentum
    name: 모멘텀
    tech: 80
    fund: 20
    description: 추세 추종
  - id: dividend
    name: 배당
    tech: 20
    fund: 80
`)

	s, err := NewService(path, arbor.NewLogger())
	require.NoError(t, err)

	presets := s.List()
	require.Len(t, presets, 2)
	assert.Equal(t, "momentum", presets[0].ID)
	assert.Equal(t, "추세 추종", presets[0].Description)

	_, ok := s.Get("default")
	assert.False(t, ok, "file replaces built-ins")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty list":      "presets: []\n",
		"weight too high": "presets:\n  - {id: a, name: A, tech: 120, fund: 0}\n",
		"missing name":    "presets:\n  - {id: a, tech: 50, fund: 50}\n",
		"duplicate id":    "presets:\n  - {id: a, name: A, tech: 50, fund: 50}\n  - {id: a, name: B, tech: 50, fund: 50}\n",
		"zero weights":    "presets:\n  - {id: a, name: A, tech: 0, fund: 0}\n",
		"not yaml":        "presets: [",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewService(writePresets(t, content), arbor.NewLogger())
			assert.Error(t, err)
		})
	}

	_, err := NewService(filepath.Join(t.TempDir(), "missing.yaml"), arbor.NewLogger())
	assert.Error(t, err)
}
