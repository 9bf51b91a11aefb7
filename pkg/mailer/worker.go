package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tpl "github.com/oksasatya/go-ddd-notes/pkg/mailer/templates"
)

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack     Outcome = iota // sent
	Drop                   // unusable payload, never retry
	Requeue                // transient send failure
)

var ErrMissingRecipient = errors.New("email job has no recipient")

// Process decodes, renders and sends one queued job.
func Process(ctx context.Context, body []byte, sender Sender) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("bad message: %w", err)
	}
	if job.To == "" {
		return Drop, ErrMissingRecipient
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.UsesTemplate() {
		s, t, h, err := tpl.Render(job.Template, job.Data)
		if err != nil {
			return Drop, fmt.Errorf("render %s: %w", job.Template, err)
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := sender.Send(c, job.To, subject, text, html); err != nil {
		return Requeue, fmt.Errorf("send: %w", err)
	}
	return Ack, nil
}
