package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesToRotatingFile(t *testing.T) {
	for _, backend := range []string{"zap", "zerolog"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			logger := NewLogger(&LoggerConfig{
				FilePath: dir,
				Encoding: "json",
				Level:    "info",
				Logger:   backend,
			})

			logger.Debug(Relay, CreateRoom, "hidden", nil)
			logger.Info(Relay, CreateRoom, "room created", map[ExtraKey]any{RoomID: "r1"})
			_ = logger.Sync()

			raw, err := os.ReadFile(filepath.Join(dir, "relay.log"))
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
			require.Len(t, lines, 1, "debug is below the configured level")

			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
			assert.Equal(t, "room created", entry[messageKey(backend)])
			assert.Equal(t, string(Relay), entry["Category"])
			assert.Equal(t, string(CreateRoom), entry["SubCategory"])
			assert.Equal(t, "r1", entry[string(RoomID)])
			assert.Equal(t, backend, entry[string(LoggerName)])
		})
	}
}

func TestNewLogger_UnknownBackend(t *testing.T) {
	assert.Panics(t, func() {
		NewLogger(&LoggerConfig{Logger: "logrus"})
	})
}

func messageKey(backend string) string {
	if backend == "zap" {
		return "msg"
	}
	return "message"
}
