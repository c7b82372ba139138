// Package log provides a leveled structured logger built on [log/slog].
//
// A [Logger] is configured once with functional options and is immutable
// afterward, so it can be shared freely between goroutines:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Debug("compiled script", slog.Int("statements", 3))
//
// Attributes added with [Logger.With] are included in every later message.
// The zero Logger discards all messages, which lets libraries accept a
// Logger without requiring one.
//
// # Levels
//
// In addition to the four [slog] levels, [LevelTrace] sits below
// [LevelDebug] for high-volume diagnostics such as cache lookups.
//
// # Output
//
// Messages are written as [FormatText] (key=value) or [FormatJSON]. With
// [WithPretty], values are colorized using lipgloss when the output is a
// terminal, and JSON is indented for reading.
//
// # Package-level logging
//
// The functions [Info], [DebugContext], and friends write to a shared
// Logger that [Config] reconfigures. Functions without a context argument
// use [DefaultContextProvider].
package log
