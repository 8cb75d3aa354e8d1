package sentry

import (
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// dsn is a package-level var so tests and builds can override it. Empty means
// telemetry stays off even when the config enables it.
var dsn = ""

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// Init initializes the Sentry SDK. When telemetryEnabled is false or dsn is
// empty, it no-ops silently and all other functions in this package become
// safe no-ops.
func Init(version string, telemetryEnabled bool) error {
	if !telemetryEnabled || dsn == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "atlas@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("version", version)
	})

	enabled = true
	return nil
}

// SetDSN overrides the DSN used by Init. Used by the CLI when the config file
// names a project.
func SetDSN(value string) {
	dsn = value
}

// IsEnabled returns whether sentry is active.
func IsEnabled() bool {
	return enabled
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(2 * time.Second)
}

// RecoverPanic captures a panic to Sentry, flushes, then re-panics.
// Usage: defer sentry.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if err := recover(); err != nil {
		gosentry.CurrentHub().Recover(err)
		gosentry.Flush(2 * time.Second)
		panic(err)
	}
}

// CapturePanic reports a value already obtained from recover() without
// re-panicking. The webview host uses it to keep its dispatch loop alive.
func CapturePanic(v any) {
	if !enabled || v == nil {
		return
	}
	gosentry.CurrentHub().Recover(v)
}

// CaptureError reports a controller-level failure with the screen it came from.
func CaptureError(err error, screen string) {
	if !enabled || err == nil {
		return
	}
	gosentry.WithScope(func(scope *gosentry.Scope) {
		scope.SetTag("screen", screen)
		gosentry.CaptureException(err)
	})
}

// SetContext adds the screen the host process is serving to the current scope.
func SetContext(screen, site, product string) {
	if !enabled {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("screen", screen)
		scope.SetTag("product", product)
		scope.SetContext("webview", map[string]interface{}{
			"screen":  screen,
			"site":    site,
			"product": product,
		})
	})
}
