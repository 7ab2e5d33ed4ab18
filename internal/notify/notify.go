// Package notify delivers order confirmations. Delivery is best effort: the
// order is already committed when a Notifier runs, so callers only log errors.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/google/uuid"
)

const EventOrderConfirmation = "order.confirmation"

type Notifier interface {
	Notify(ctx context.Context, c Confirmation) error
}

type Line struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	LineTotal string `json:"line_total"`
}

type Confirmation struct {
	Type         string        `json:"type"`
	OrderID      uuid.UUID     `json:"order_id"`
	To           string        `json:"to"`
	CustomerName string        `json:"customer_name"`
	Subject      string        `json:"subject"`
	Status       models.Status `json:"status"`
	Lines        []Line        `json:"lines"`
	Total        string        `json:"total"`
	CreatedAt    time.Time     `json:"created_at"`
}

func NewConfirmation(o *models.Order) Confirmation {
	lines := make([]Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     pricing.Format(it.Price),
			LineTotal: pricing.Format(it.LineTotal),
		})
	}
	return Confirmation{
		Type:         EventOrderConfirmation,
		OrderID:      o.ID,
		To:           o.CustomerEmail,
		CustomerName: o.CustomerName,
		Subject:      fmt.Sprintf("Order confirmation #%s", o.ID),
		Status:       o.Status,
		Lines:        lines,
		Total:        pricing.Format(o.TotalPrice),
		CreatedAt:    o.CreatedAt,
	}
}

var bodyTmpl = template.Must(template.New("confirmation").Parse(
	`Hello {{.CustomerName}},

Thank you for your order #{{.OrderID}}.
{{range .Lines}}
  {{.Name}} x{{.Quantity}} @ {{.Price}} = {{.LineTotal}}{{end}}

Total: {{.Total}}
Status: {{.Status}}
`))

func (c Confirmation) Body() (string, error) {
	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

// LogNotifier writes confirmations to the request logger. Used when no
// broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, c Confirmation) error {
	logging.FromContext(ctx).Info("order_confirmation",
		"order_id", c.OrderID, "to", c.To, "subject", c.Subject, "total", c.Total)
	return nil
}
