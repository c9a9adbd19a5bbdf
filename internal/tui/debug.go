package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebugLogger logs TUI state, keystrokes, and events to a file.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	enabled bool
	seq     int
}

// Global debug logger instance
var debugLog *DebugLogger

// DebugLogPath is the fixed path for debug logs
const DebugLogPath = "hearth-debug.log"

// InitDebugLogger initializes the debug logger if debug mode is enabled.
func InitDebugLogger(enabled bool) error {
	if !enabled {
		debugLog = &DebugLogger{enabled: false}
		return nil
	}

	// Create log file in current directory with fixed name (easy to find)
	logPath := DebugLogPath
	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating debug log: %w", err)
	}

	debugLog = &DebugLogger{
		file:    f,
		enabled: true,
	}

	debugLog.log("DEBUG_START", map[string]any{
		"log_file": logPath,
		"time":     time.Now().Format(time.RFC3339),
	})

	return nil
}

// CloseDebugLogger closes the debug log file.
func CloseDebugLogger() {
	if debugLog != nil && debugLog.file != nil {
		debugLog.log("DEBUG_END", map[string]any{
			"time": time.Now().Format(time.RFC3339),
		})
		_ = debugLog.file.Close()
	}
}

// log writes a structured log entry.
func (d *DebugLogger) log(event string, data map[string]any) {
	if d == nil || !d.enabled || d.file == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	entry := map[string]any{
		"seq":   d.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(d.file, "%s\n", b)
}

// LogKeyPress logs a key press event.
func LogKeyPress(msg tea.KeyMsg) {
	if debugLog == nil || !debugLog.enabled {
		return
	}
	debugLog.log("KEY_PRESS", map[string]any{
		"key":  msg.String(),
		"type": fmt.Sprintf("%T", msg.Type),
	})
}

// LogState logs the timeline state after a transition.
func LogState(m Model, action string) {
	if debugLog == nil || !debugLog.enabled {
		return
	}

	data := map[string]any{
		"action":    action,
		"member":    m.member().Name,
		"offset":    m.state.Offset,
		"selection": m.view.Selection.String(),
		"cursor":    m.cursor,
		"window":    m.view.Window.Start.Format("2006-01-02"),
		"events":    len(m.view.Events),
		"next":      m.view.NextEventID,
	}

	visible := make([]map[string]any, 0, len(m.view.Positioned()))
	for _, pe := range m.view.Positioned() {
		visible = append(visible, map[string]any{
			"id":       pe.Event.ID,
			"title":    truncateStr(pe.Event.Title, 20),
			"position": pe.Position,
		})
	}
	data["visible"] = visible
	if ov := m.view.Overflow(); ov != nil {
		data["overflow"] = ov.Count
	}

	debugLog.log("STATE", data)
}

// LogEvent logs an arbitrary named event.
func LogEvent(name string, data map[string]any) {
	if debugLog == nil || !debugLog.enabled {
		return
	}
	debugLog.log(name, data)
}

// LogError logs an error.
func LogError(context string, err error) {
	if debugLog == nil || !debugLog.enabled {
		return
	}
	debugLog.log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}

// debugLogWriter forwards application log lines into the debug log.
type debugLogWriter struct{}

func (debugLogWriter) Write(p []byte) (int, error) {
	if debugLog != nil && debugLog.enabled {
		debugLog.log("LOG", map[string]any{
			"line": strings.TrimRight(string(p), "\n"),
		})
	}
	return len(p), nil
}

// truncateStr truncates a string to max runes.
func truncateStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
