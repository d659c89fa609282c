package payment

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// BrowserOpener launches the system browser on the checkout page.
type BrowserOpener struct{}

// The browser outlives the request that opened it, so ctx is not bound to
// the child process.
func (BrowserOpener) Open(_ context.Context, checkoutURL string) error {
	name, args := browserCommand(runtime.GOOS, checkoutURL)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	go cmd.Wait()
	return nil
}

func browserCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// LogOpener leaves opening to the UI shell, which reads the checkout URL
// from the gate snapshot. It only records the event.
func LogOpener(logger *slog.Logger) Opener {
	return OpenerFunc(func(_ context.Context, checkoutURL string) error {
		logger.Info("checkout ready", "url", checkoutURL)
		return nil
	})
}
