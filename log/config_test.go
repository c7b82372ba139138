package log

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	c := makeConfig(nil,
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelDebug {
		t.Errorf("level = %v, want debug", c.level)
	}

	if c.format != FormatJSON {
		t.Errorf("format = %v, want json", c.format)
	}

	if !c.caller || c.pretty {
		t.Errorf("caller = %v, pretty = %v", c.caller, c.pretty)
	}

	if c.output == nil {
		t.Error("nil writer was not replaced")
	}
}

func TestConfig_with_DoesNotAlias(t *testing.T) {
	base := makeConfig(nil)
	derived := base.with(WithLevel(LevelError))

	if base.level != DefaultLevel {
		t.Errorf("base level changed to %v", base.level)
	}

	if derived.level != LevelError {
		t.Errorf("derived level = %v", derived.level)
	}
}

func TestConfig_formatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano", "rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"date only", "DateOnly", "2023-10-15"},
		{"alias", "ms", "Oct 15 14:30:45.123"},
		{"custom", "2006/01/02", "2023/10/15"},
		{"unknown name is a layout", "UNKNOWN", "UNKNOWN"},
		{"empty", "", ""},
		{"whitespace", "  \t ", ""},
		{"none", "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := makeFormatTimeFunc(tt.layout)(now)
			if got != tt.want {
				t.Errorf("makeFormatTimeFunc(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"error+2", LevelError + 2},
		{"loud", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelInfo, "info"},
		{LevelWarn + 1, "warn+1"},
		{LevelTrace - 2, "trace-2"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}

	var names []string
	for name := range Levels() {
		names = append(names, name)
	}

	if got := strings.Join(names, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("Levels() = %s", got)
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("json not parsed")
	}

	if ParseFormat("yaml") != DefaultFormat {
		t.Error("unknown format did not fall back")
	}

	if FormatText.String() != "text" || Format(9).String() != "Format(9)" {
		t.Error("unexpected Format names")
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	format := makeFormatTimeFunc("RFC3339Nano")
	now := time.Now()

	for b.Loop() {
		_ = format(now)
	}
}
