package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock payment provider for testing. Simulates hosted
// checkout flows without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// VerifyWebhookFunc allows customizing webhook verification behavior
	VerifyWebhookFunc func(payload []byte, signature string) (*Event, error)

	// Sessions stores created sessions for retrieval
	Sessions map[string]*CheckoutSession

	// CallLog tracks method calls for test assertions
	CallLog []string
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*CheckoutSession),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%s, %d items)", params.OrderID, len(params.LineItems)))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	sess := &CheckoutSession{
		ID:        "cs_test_" + uuid.New().String(),
		URL:       "https://checkout.example.com/pay/" + params.OrderID,
		CreatedAt: time.Now(),
	}
	m.Sessions[sess.ID] = sess
	return sess, nil
}

// VerifyWebhook verifies a mock webhook. The default behavior accepts
// any payload whose signature is non-empty and echoes it back as a
// completed payment for the signature's value.
func (m *MockProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("VerifyWebhook(%d bytes)", len(payload)))

	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(payload, signature)
	}

	if signature == "" {
		return nil, ErrInvalidWebhookSignature
	}
	return &Event{
		Kind:            EventPaymentCompleted,
		OrderID:         signature,
		ProviderEventID: "evt_" + uuid.New().String(),
		Type:            "checkout.session.completed",
	}, nil
}
