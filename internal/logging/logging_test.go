package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-commerce-session/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("chatty")
	require.Error(t, err)
}

func TestSetupWritesToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.Close()
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	file := filepath.Join(t.TempDir(), "logs", "shopper.log")
	require.NoError(t, logging.Setup("debug", file))

	log.Debug().Str("customer_id", "guest-1").Msg("Saving tokens")
	logging.Close()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"customer_id":"guest-1"`)
	require.Contains(t, string(data), `"message":"Saving tokens"`)
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	require.Error(t, logging.Setup("chatty", ""))
}
