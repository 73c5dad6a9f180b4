package root

import (
	"testing"

	"fjacquet/spend-dashboard/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "spend-dashboard", Cmd.Use)
	assert.Contains(t, Cmd.Short, "transaction files")
	assert.NotNil(t, Cmd.Run)
	assert.NotNil(t, Cmd.PersistentPreRunE)
	assert.NotNil(t, Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	if Cmd.PersistentFlags().Lookup("config") == nil {
		Init()
	}

	assert.NotNil(t, Cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, Cmd.PersistentFlags().Lookup("log-level"))
	formatFlag := Cmd.PersistentFlags().Lookup("format")
	if assert.NotNil(t, formatFlag) {
		assert.Equal(t, "f", formatFlag.Shorthand)
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name       string
		flags      GlobalFlags
		wantFormat string
		wantLevel  string
	}{
		{name: "no overrides", flags: GlobalFlags{}, wantFormat: "classic", wantLevel: "info"},
		{name: "format", flags: GlobalFlags{Format: "monthly"}, wantFormat: "monthly", wantLevel: "info"},
		{name: "log level", flags: GlobalFlags{LogLevel: "debug"}, wantFormat: "classic", wantLevel: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Format.Default = "classic"
			cfg.Log.Level = "info"

			applyOverrides(cfg, tt.flags)
			assert.Equal(t, tt.wantFormat, cfg.Format.Default)
			assert.Equal(t, tt.wantLevel, cfg.Log.Level)
		})
	}
}
