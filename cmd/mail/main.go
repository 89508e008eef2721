package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/mailqueue"
	"github.com/wneessen/go-mail"
)

type mailTemplate struct {
	subject string
	tmpl    *template.Template
}

func loadTemplates() (map[string]mailTemplate, error) {
	files := map[string]struct {
		subject string
		path    string
	}{
		domain.MailTypeNewAccount:     {"Shift Planner - your account", "./templates/new_account_email.html"},
		domain.MailTypeShiftsAssigned: {"Shift Planner - new shifts assigned", "./templates/shifts_assigned_email.html"},
	}

	templates := make(map[string]mailTemplate, len(files))
	for mailType, f := range files {
		tmpl, err := template.ParseFiles(f.path)
		if err != nil {
			return nil, err
		}
		templates[mailType] = mailTemplate{subject: f.subject, tmpl: tmpl}
	}

	return templates, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}

	templates, err := loadTemplates()
	if err != nil {
		logger.Error("failed to parse mail templates", slog.String("error", err.Error()))
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("failed to connect to the mail server", slog.String("error", err.Error()))
		return
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := mailqueue.Declare(ch)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false, // exclusive
		false, // no-local, unsupported by rabbitmq
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-msgs:
				if !ok {
					return
				}
				handleDelivery(logger, cfg, client, templates, delivery)
			}
		}
	}()

	logger.Info("waiting for messages (press CTRL+C to quit)")
	<-sigChan

	logger.Info("shutting down mail worker")
	cancel()
	wg.Wait()
	logger.Info("mail worker stopped")
}

func handleDelivery(logger *slog.Logger, cfg *config.Config, client *mail.Client, templates map[string]mailTemplate, delivery amqp.Delivery) {
	msg, err := mailqueue.Decode(delivery.Body)
	if err != nil {
		logger.Error("failed to decode mail message", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}
	logger.Info("received mail message", slog.String("type", msg.Type), slog.String("to", msg.To))

	mt, ok := templates[msg.Type]
	if !ok {
		logger.Error("unsupported mail type", slog.String("type", msg.Type))
		_ = delivery.Nack(false, false)
		return
	}

	m := mail.NewMsg()
	if err := m.From(cfg.Email.SMTP.Username); err != nil {
		logger.Error("failed to set sender", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}
	if err := m.To(msg.To); err != nil {
		logger.Error("failed to set recipient", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}
	if err := m.SetBodyHTMLTemplate(mt.tmpl, msg.Data); err != nil {
		logger.Error("failed to render mail body", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}
	m.Subject(mt.subject)

	if err := client.DialAndSend(m); err != nil {
		logger.Error("failed to send mail", slog.String("error", err.Error()))
		_ = delivery.Nack(false, true) // requeue
		return
	}

	_ = delivery.Ack(false)
}
