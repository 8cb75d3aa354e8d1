package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	sentrypkg "github.com/kastheco/atlas/internal/sentry"
)

var (
	InfoLog    *log.Logger
	WarningLog *log.Logger
	ErrorLog   *log.Logger
)

var (
	mu          sync.Mutex
	logFile     *os.File
	logFileName = filepath.Join(os.TempDir(), "atlas.log")
)

func init() {
	// Usable before Initialize so packages can log from init paths and tests.
	setOutputs(io.Discard, false)
}

// Initialize opens the log file and points the three loggers at it. daemon
// selects a distinct prefix so host subprocess output can be told apart from
// the CLI. When telemetry is true the loggers are also teed into sentry.
func Initialize(daemon bool, telemetry ...bool) {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open log file %s: %v\n", logFileName, err)
		setOutputs(os.Stderr, daemon)
		return
	}
	logFile = f

	tee := len(telemetry) > 0 && telemetry[0]
	var out io.Writer = f
	if !tee {
		setOutputs(out, daemon)
		return
	}
	prefix := prefixFor(daemon)
	InfoLog = log.New(sentrypkg.NewWriter(out, sentrypkg.LevelInfo), prefix+"INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(sentrypkg.NewWriter(out, sentrypkg.LevelWarning), prefix+"WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(sentrypkg.NewWriter(out, sentrypkg.LevelError), prefix+"ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Close flushes and closes the log file. Safe to call without Initialize.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	setOutputs(io.Discard, false)
}

// FileName returns the path the loggers write to after Initialize.
func FileName() string {
	return logFileName
}

func setOutputs(w io.Writer, daemon bool) {
	prefix := prefixFor(daemon)
	InfoLog = log.New(w, prefix+"INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(w, prefix+"WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(w, prefix+"ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func prefixFor(daemon bool) string {
	if daemon {
		return "[host] "
	}
	return ""
}
