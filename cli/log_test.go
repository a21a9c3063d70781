package cli

import (
	"os"
	"testing"

	"github.com/ardnew/fncall/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned values",
			args: []string{"--log-level=debug", "--log-format=json", "run"},
			want: logConfig{Level: "debug", Format: "json"},
		},
		{
			name: "separate values",
			args: []string{"run", "--log-level", "warn", "--log-format", "text"},
			want: logConfig{Level: "warn", Format: "text"},
		},
		{
			name: "missing value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-pretty=true", "--no-log-caller=false", "--log-pretty=maybe"},
			want: logConfig{Pretty: true, Caller: true},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level=error"},
			want: logConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLogConfig_ScanConfiguresLogger(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	var cfg logConfig

	cfg.scan([]string{"--log-level=trace", "--log-format=json"})

	if log.Default().Level() != log.LevelTrace || log.Default().Format() != log.FormatJSON {
		t.Errorf("expected the default logger to be reconfigured")
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		assigned bool
		want     bool
		ok       bool
	}{
		{"--log-pretty", "", false, true, true},
		{"--no-log-pretty", "", false, false, true},
		{"--log-pretty", "false", true, false, true},
		{"--no-log-pretty", "false", true, true, true},
		{"--log-pretty", "x", true, false, false},
	}

	for _, tt := range tests {
		v, ok := boolFlag(tt.name, tt.value, tt.assigned)
		if v != tt.want || ok != tt.ok {
			t.Errorf("boolFlag(%q, %q, %v) = %v, %v", tt.name, tt.value, tt.assigned, v, ok)
		}
	}
}
