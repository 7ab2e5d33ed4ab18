package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/segmentio/kafka-go"
)

type Mailer interface {
	Send(ctx context.Context, c Confirmation) error
}

// LogMailer renders the message and logs it instead of delivering it.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, c Confirmation) error {
	body, err := c.Body()
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("mail_sent", "to", c.To, "subject", c.Subject, "body", body)
	return nil
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Worker consumes confirmation events and hands them to a Mailer. Offsets are
// committed after each message whether or not delivery succeeded.
type Worker struct {
	Reader     messageReader
	Mailer     Mailer
	RetryDelay time.Duration
}

func NewWorker(reader messageReader, mailer Mailer) *Worker {
	return &Worker{Reader: reader, Mailer: mailer, RetryDelay: 2 * time.Second}
}

func (w *Worker) Run(ctx context.Context) error {
	l := logging.FromContext(ctx).With("component", "notify.worker")
	defer w.Reader.Close()

	for {
		msg, err := w.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			l.Error("kafka_read_error", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.RetryDelay):
			}
			continue
		}

		w.handle(ctx, msg)

		if err := w.Reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			l.Error("kafka_commit_error", "offset", msg.Offset, "error", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg kafka.Message) {
	l := logging.FromContext(ctx).With("component", "notify.worker", "offset", msg.Offset)

	var c Confirmation
	if err := json.Unmarshal(msg.Value, &c); err != nil {
		l.Warn("confirmation_decode_error", "error", err)
		return
	}
	if c.Type != EventOrderConfirmation {
		l.Debug("confirmation_skipped", "type", c.Type)
		return
	}
	if err := w.Mailer.Send(ctx, c); err != nil {
		l.Error("confirmation_send_error", "order_id", c.OrderID, "error", err)
		return
	}
	l.Info("confirmation_sent", "order_id", c.OrderID)
}
