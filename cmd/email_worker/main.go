package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/config"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect failed")
	}
	defer q.Close()

	// prefetch for fair dispatch
	msgs, err := q.Consume(16)
	if err != nil {
		logger.WithError(err).Error("consume failed")
		return
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			out, err := mailer.Process(ctx, msg.Body, mg)
			entry := logger.WithFields(logrus.Fields{"delivery_tag": msg.DeliveryTag})
			switch out {
			case mailer.Ack:
				_ = msg.Ack(false)
			case mailer.Drop:
				entry.WithError(err).Warn("dropping email job")
				_ = msg.Nack(false, false)
			case mailer.Requeue:
				entry.WithError(err).Error("email send failed; requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down...")
	cancel()
	q.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
