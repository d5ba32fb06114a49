package listeners

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/atm"
)

// EmailAlert mails the operations desk whenever a withdrawal at or above
// the threshold is attempted. All other notifications pass through
// silently.
type EmailAlert struct {
	client    *resend.Client
	from      string
	to        string
	threshold decimal.Decimal
}

func NewEmailAlert(apiKey, from, to string, threshold decimal.Decimal) *EmailAlert {
	if from == "" {
		from = "alerts@resend.dev"
	}
	return &EmailAlert{
		client:    resend.NewClient(apiKey),
		from:      from,
		to:        to,
		threshold: threshold,
	}
}

func (e *EmailAlert) HandleNotification(ctx context.Context, n atm.TransactionNotification) error {
	if n.Operation != atm.OpWithdraw || n.Amount.LessThan(e.threshold) {
		return nil
	}

	subject := fmt.Sprintf("Large withdrawal attempt on account %d", n.PrimaryAccount)
	_, err := e.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{e.to},
		Subject: subject,
		Text:    n.Message(),
	})
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	log.Printf("Alert email sent for notification %s", n.ID)
	return nil
}
