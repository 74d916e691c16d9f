package cli

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "qrmenu", cmd.Use)
	assert.Contains(t, cmd.Long, "QR code")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{{"serve"}, {"migrate"}, {"migrate", "up"}, {"migrate", "status"}, {"passwd"}, {"sweep"}}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "info", levelFlag.DefValue)
}

func TestPasswdCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	passwdCmd, _, err := cmd.Find([]string{"passwd"})
	require.NoError(t, err)

	pw := passwdCmd.Flags().Lookup("password")
	require.NotNil(t, pw)
	assert.Equal(t, "p", pw.Shorthand)
	assert.NotNil(t, passwdCmd.Flags().Lookup("create"))
	assert.NotNil(t, passwdCmd.Flags().Lookup("reset-2fa"))
}

func TestSweepCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sweepCmd, _, err := cmd.Find([]string{"sweep"})
	require.NoError(t, err)

	dryRun := sweepCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)

	minAge := sweepCmd.Flags().Lookup("min-age")
	require.NotNil(t, minAge)
	assert.Equal(t, DefaultSweepMinAge.String(), minAge.DefValue)
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--log-level", "loud", "migrate", "status"})
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswdRequiresUsername(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"passwd"})
	cmd.SilenceErrors = true

	assert.Error(t, cmd.Execute())
}
