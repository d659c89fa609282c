// Command enfq is the terminal client: it runs the study app in-process
// against the local profile, or serves it to a UI shell over HTTP.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/config"
	"github.com/enfq/app/internal/device"
	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/payment"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:          "enfq",
		Short:        "Nursing exam practice with adaptive questions",
		Long:         "enfQ generates practice questions and timed mock exams for nursing contests, residency and graduation.",
		Version:      version,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		serveCmd(&flags),
		statusCmd(&flags),
		fingerprintCmd(),
		onboardCmd(&flags),
		practiceCmd(&flags),
		examCmd(&flags),
		summaryCmd(&flags),
		subscribeCmd(&flags),
	)
	return root
}

// session is one in-process run of the app for the local device.
type session struct {
	cfg *config.Config
	rt  *app.Runtime
	log *slog.Logger
	fp  string
	out io.Writer
	in  *bufio.Scanner
}

// openSession loads configuration, lets adjust override it and builds the
// runtime. The caller must Close the session.
func openSession(cmd *cobra.Command, flags *rootFlags, opener payment.Opener, adjust func(*config.Config)) (*session, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	log := logger.New(cmd.ErrOrStderr(), flags.logLevel, "text")
	if opener == nil {
		opener = payment.LogOpener(log)
	}

	rt, err := app.Build(cmd.Context(), cfg, opener, log)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg: cfg,
		rt:  rt,
		log: log,
		fp:  device.Local(),
		out: cmd.OutOrStdout(),
		in:  bufio.NewScanner(cmd.InOrStdin()),
	}, nil
}

func (s *session) Close() {
	if err := s.rt.Close(); err != nil {
		s.log.Warn("closing runtime", "error", err)
	}
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// ask prints prompt and reads one line. ok is false at end of input.
func (s *session) ask(prompt string) (string, bool) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}
