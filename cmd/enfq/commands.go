package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/enfq/app/internal/api"
	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/config"
	"github.com/enfq/app/internal/device"
	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/models"
	"github.com/enfq/app/internal/payment"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the app to a UI shell over local HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			log := logger.New(cmd.ErrOrStderr(), cfg.Server.LogLevel, cfg.Server.LogFormat)
			rt, err := app.Build(cmd.Context(), cfg, payment.LogOpener(log), log)
			if err != nil {
				return err
			}
			defer rt.Close()
			return api.Serve(cmd.Context(), api.NewServer(cfg.Server, rt, log), log)
		},
	}
}

func statusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the profile, progress and subscription for this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.rt.App.Access(cmd.Context(), s.fp)
			if err != nil {
				return err
			}
			printStatus(s.out, s.rt.App.Profile(), st, s.rt.App.Settings())
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print this device's fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), device.Local())
			return nil
		},
	}
}

type onboardFlags struct {
	name, objective, area, experience, studyTime, commitment, painPoint string
}

func onboardCmd(flags *rootFlags) *cobra.Command {
	var of onboardFlags
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set your study objective and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := onboardingRequest(cmd, of)
			if err != nil {
				return err
			}
			s, err := openSession(cmd, flags, nil, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.rt.App.Onboard(cmd.Context(), req)
			if err != nil {
				return err
			}
			s.printf("Perfil atualizado: %s (%s)\n", displayName(p), p.ObjectiveLabel())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&of.name, "name", "", "Your name")
	f.StringVar(&of.objective, "objective", "", "CONTEST, RESIDENCY or GRADUATION")
	f.StringVar(&of.area, "area", "", "Residency specialty: "+areaList())
	f.StringVar(&of.experience, "experience", "", "Experience level: "+strings.Join(models.ExperienceLevels, ", "))
	f.StringVar(&of.studyTime, "study-time", "", "When you usually study")
	f.StringVar(&of.commitment, "commitment", "", "Daily study commitment")
	f.StringVar(&of.painPoint, "pain-point", "", "What you struggle with most")
	return cmd
}

// onboardingRequest includes only the flags that were set.
func onboardingRequest(cmd *cobra.Command, of onboardFlags) (models.OnboardingRequest, error) {
	var req models.OnboardingRequest
	changed := cmd.Flags().Changed
	if changed("name") {
		req.Name = of.name
	}
	if changed("objective") {
		o := models.StudyObjective(strings.ToUpper(of.objective))
		if !models.ValidObjectives[o] {
			return req, fmt.Errorf("unknown objective %q", of.objective)
		}
		req.Objective = &o
	}
	if changed("area") {
		a := models.ResidencyArea(of.area)
		req.ResidencyArea = &a
	}
	if changed("experience") {
		req.ExperienceLevel = &of.experience
	}
	if changed("study-time") {
		req.StudyTime = &of.studyTime
	}
	if changed("commitment") {
		req.DailyCommitment = &of.commitment
	}
	if changed("pain-point") {
		req.MainPainPoint = &of.painPoint
	}
	return req, nil
}

func areaList() string {
	names := make([]string, len(models.AllAreas))
	for i, a := range models.AllAreas {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func summaryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <subject>",
		Short: "Get a quick study summary (Bizu) on a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.rt.App.Summary(cmd.Context(), s.fp, strings.Join(args, " "))
			if err != nil {
				return s.explain(err)
			}
			s.printf("%s\n", resp.Content)
			if resp.Truncated {
				s.printf("\nResumo completo disponível no plano Premium: enfq subscribe\n")
			}
			return nil
		},
	}
}

type subscribeFlags struct {
	simulate  bool
	noBrowser bool
	after     time.Duration
}

func subscribeCmd(flags *rootFlags) *cobra.Command {
	var sf subscribeFlags
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Open the checkout and wait for the payment to be confirmed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opener payment.Opener = payment.BrowserOpener{}
			if sf.noBrowser {
				opener = payment.OpenerFunc(func(_ context.Context, url string) error {
					fmt.Fprintf(cmd.OutOrStdout(), "Abra o link de pagamento: %s\n", url)
					return nil
				})
			}
			s, err := openSession(cmd, flags, opener, func(c *config.Config) {
				if sf.simulate {
					c.Payment.Simulate = true
					c.Payment.SimulateAfter = sf.after
				}
			})
			if err != nil {
				return err
			}
			defer s.Close()
			return s.subscribe(cmd.Context(), sf.simulate)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&sf.simulate, "simulate", false, "Approve the payment without contacting the provider")
	f.DurationVar(&sf.after, "after", 0, "With --simulate, how long until approval")
	f.BoolVar(&sf.noBrowser, "no-browser", false, "Print the checkout link instead of opening a browser")
	return cmd
}

func (s *session) subscribe(ctx context.Context, force bool) error {
	snap, err := s.rt.App.Checkout(ctx, s.fp)
	if err != nil {
		return s.explain(err)
	}
	if force && s.rt.Simulator != nil && s.cfg.Payment.SimulateAfter == 0 {
		s.rt.Simulator.ForceApprove()
	}
	s.printf("Aguardando confirmação do pagamento (pedido %s)...\n", snap.AttemptID)

	snap, err = s.rt.App.WaitPayment(ctx)
	if errors.Is(err, context.Canceled) {
		s.rt.App.CancelPayment()
		s.printf("Pagamento cancelado.\n")
		return nil
	}
	if err != nil {
		return err
	}

	switch snap.State {
	case models.GateApproved:
		p := s.rt.App.Profile()
		s.printf("Pagamento aprovado! Premium ativo até %s.\n", p.SubscriptionExpiry.Local().Format("02/01/2006"))
	case models.GateExpired:
		s.printf("Não recebemos a confirmação a tempo. Se você já pagou, fale com o suporte: %s\n", s.cfg.Support.ContactURL)
	default:
		s.printf("Pagamento não aprovado: %s\n", snap.Error)
	}
	return nil
}

// explain prints an access denial in the learner's terms and returns
// other errors unchanged.
func (s *session) explain(err error) error {
	var denied *app.DeniedError
	if !errors.As(err, &denied) {
		return err
	}
	if denied.Status.Locked() {
		s.printf("Conta bloqueada: sua assinatura já está em uso em %d dispositivos.\nFale com o suporte: %s\n",
			models.MaxDevices, denied.Status.SupportURL)
		return nil
	}
	s.printf("Recurso disponível apenas no plano Premium (%v).\nAssine com: enfq subscribe\n", denied.Err)
	return nil
}
