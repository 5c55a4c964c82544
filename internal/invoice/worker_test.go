package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/repo"
)

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func initTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return &repo.GormRepo{DB: db}
}

func seedOrder(t *testing.T, r *repo.GormRepo) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:        uuid.New(),
		Status:        models.OrderStatusProcessing,
		PaymentMethod: models.PaymentMethodOnline,
		IsPaid:        true,
		ShippingAddress: models.ShippingAddress{
			FullName:   "Test Buyer",
			Email:      "buyer@example.com",
			Line1:      "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		ItemsPrice:    25800,
		TaxPrice:      4644,
		ShippingPrice: 49900,
		TotalPrice:    80344,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Air Runner", Size: "9", Quantity: 2, UnitPrice: 12900, LineTotal: 25800},
		},
	}
	require.NoError(t, r.DB.Create(order).Error)
	return order
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess(t *testing.T) {
	r := initTestRepo(t)
	order := seedOrder(t, r)

	mailer := &fakeMailer{}
	p := &Processor{Repo: r, Mailer: mailer, Log: discard()}

	payload, err := json.Marshal(Job{OrderID: order.ID})
	require.NoError(t, err)

	require.NoError(t, p.Process(context.Background(), payload))

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "buyer@example.com", mail.to)
	assert.Contains(t, mail.subject, order.ID.String())
	assert.Contains(t, mail.body, "Air Runner")
}

func TestProcess_BadPayload(t *testing.T) {
	p := &Processor{Repo: initTestRepo(t), Mailer: &fakeMailer{}, Log: discard()}

	err := p.Process(context.Background(), []byte("{not json"))
	assert.Error(t, err)

	err = p.Process(context.Background(), []byte(`{}`))
	assert.ErrorContains(t, err, "missing order_id")
}

func TestProcess_MissingOrder(t *testing.T) {
	p := &Processor{Repo: initTestRepo(t), Mailer: &fakeMailer{}, Log: discard()}

	payload, err := json.Marshal(Job{OrderID: uuid.New()})
	require.NoError(t, err)

	err = p.Process(context.Background(), payload)
	assert.ErrorContains(t, err, "not found")
}

func TestProcessWithRetry_Bounded(t *testing.T) {
	r := initTestRepo(t)
	order := seedOrder(t, r)

	mailer := &fakeMailer{err: errors.New("relay down")}
	p := &Processor{Repo: r, Mailer: mailer, Log: discard(), MaxAttempts: 3, Backoff: time.Millisecond}

	payload, err := json.Marshal(Job{OrderID: order.ID})
	require.NoError(t, err)

	err = p.processWithRetry(context.Background(), payload)
	assert.ErrorContains(t, err, "relay down")
}

func TestRender(t *testing.T) {
	r := initTestRepo(t)
	order := seedOrder(t, r)

	loaded, err := r.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)

	body := Render(loaded)

	assert.Contains(t, body, order.ID.String())
	assert.Contains(t, body, "online (paid)")
	assert.Contains(t, body, "Air Runner (size 9) x2  258.00")
	assert.Contains(t, body, "Total:    803.44")
	assert.Contains(t, body, "Test Buyer")
	assert.Contains(t, body, "Springfield")
}
