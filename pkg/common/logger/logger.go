package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is the minimum severity that gets written.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l Level) String() string { return levelNames[l] }

var (
	mu           sync.Mutex
	std          = log.New(os.Stdout, "", log.LstdFlags)
	currentLevel = InfoLevel
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" (any case)
// to a Level. Unknown values map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Initialize sets the global level from a string such as "debug" or "warn".
// Debug output carries the caller's file and line.
func Initialize(level string) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = ParseLevel(level)
	if currentLevel == DebugLevel {
		std.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	} else {
		std.SetFlags(log.Ldate | log.Ltime)
	}
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// CurrentLevel returns the active level.
func CurrentLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

func output(level Level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < currentLevel {
		return
	}
	_ = std.Output(3, "["+levelNames[level]+"] "+fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) { output(DebugLevel, format, v...) }
func Info(format string, v ...interface{})  { output(InfoLevel, format, v...) }
func Warn(format string, v ...interface{})  { output(WarnLevel, format, v...) }
func Error(format string, v ...interface{}) { output(ErrorLevel, format, v...) }
