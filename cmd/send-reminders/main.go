package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/config"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/email"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store/postgres"
)

// One-shot batch, meant to run from cron once a day: finds tomorrow's
// appointments and sends each booker a reminder. Without SMTP configured the
// reminders are only logged.
func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "send-reminders"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		_ = postgres.Close(db)
	}()

	var sender email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	} else {
		sender = &email.LogSender{Log: log}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := postgres.NewAppointmentRepo(db)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.DateLayout)

	appts, err := repo.ListForDate(ctx, tomorrow)
	if err != nil {
		log.Error("listing tomorrow's appointments failed", slog.Any("err", err), slog.String("date", tomorrow))
		os.Exit(1)
	}

	log.Info("reminder check", slog.String("date", tomorrow), slog.Int("appointments", len(appts)))

	failed := 0
	for _, a := range appts {
		subject, body := email.ReminderMessage(a)
		if err := sender.Send(a.Email, subject, body); err != nil {
			failed++
			log.Error("reminder send failed",
				slog.Any("err", err),
				slog.Int64("appointment_id", a.ID),
			)
		}
	}

	log.Info("reminder check completed", slog.Int("sent", len(appts)-failed), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}
