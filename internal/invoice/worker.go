// Package invoice is the async side of checkout: it consumes queued
// {order_id} jobs and mails the confirmation invoice, fully decoupled
// from the request path.
package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
)

type Job struct {
	OrderID uuid.UUID `json:"order_id"`
}

type Processor struct {
	Repo        *repo.GormRepo
	Mailer      Mailer
	Log         *slog.Logger
	MaxAttempts int
	Backoff     time.Duration
}

// Run consumes jobs until the context is cancelled. Offsets are committed
// after handling, so a crash mid-job redelivers it (at-least-once);
// rendering and sending are keyed by order id and tolerate duplicates.
func (p *Processor) Run(ctx context.Context, r *kafka.Reader) error {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("invoice: fetch: %w", err)
		}

		if err := p.processWithRetry(ctx, m.Value); err != nil {
			// bounded retries exhausted: log and move on, the job is
			// reproducible from the order id in the message
			p.Log.Error("invoice_job_failed", "key", string(m.Key), "error", err)
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("invoice: commit: %w", err)
		}
	}
}

func (p *Processor) processWithRetry(ctx context.Context, payload []byte) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = p.Process(ctx, payload); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return err
}

func (p *Processor) Process(ctx context.Context, payload []byte) error {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("invoice: bad job payload: %w", err)
	}
	if job.OrderID == uuid.Nil {
		return fmt.Errorf("invoice: job missing order_id")
	}

	order, err := p.Repo.GetOrder(ctx, job.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invoice: order %s not found", job.OrderID)
		}
		return fmt.Errorf("invoice: load order %s: %w", job.OrderID, err)
	}

	body := Render(order)
	subject := fmt.Sprintf("Order confirmation %s", order.ID)

	if err := p.Mailer.Send(ctx, order.ShippingAddress.Email, subject, body); err != nil {
		return err
	}

	p.Log.Info("invoice_sent", "order_id", order.ID, "to", order.ShippingAddress.Email)
	return nil
}

// Render produces the plain-text invoice body from the order's immutable
// item snapshot.
func Render(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", order.ID)
	fmt.Fprintf(&b, "Placed: %s\n", order.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Payment: %s", order.PaymentMethod)
	if order.IsPaid {
		b.WriteString(" (paid)")
	}
	b.WriteString("\n\n")

	for _, it := range order.Items {
		fmt.Fprintf(&b, "  %s (size %s) x%d  %s\n", it.Name, it.Size, it.Quantity, money(it.LineTotal))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Items:    %s\n", money(order.ItemsPrice))
	fmt.Fprintf(&b, "Tax:      %s\n", money(order.TaxPrice))
	fmt.Fprintf(&b, "Shipping: %s\n", money(order.ShippingPrice))
	fmt.Fprintf(&b, "Total:    %s\n", money(order.TotalPrice))

	a := order.ShippingAddress
	fmt.Fprintf(&b, "\nShip to: %s, %s %s, %s %s, %s\n",
		a.FullName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country)

	return b.String()
}

func money(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
