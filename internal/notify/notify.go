package notify

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotification means the order was committed but the invoice email did
// not go out. The order stands; callers report the failure instead of
// rolling anything back.
var ErrNotification = errors.New("invoice email could not be sent")

type Message struct {
	To          string
	ToName      string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// OrderFlag records delivery on the committed order.
type OrderFlag interface {
	MarkEmailSent(ctx context.Context, orderID int64) error
}

type InvoiceNotifier struct {
	mailer Mailer
	orders OrderFlag
}

func NewInvoiceNotifier(mailer Mailer, orders OrderFlag) *InvoiceNotifier {
	return &InvoiceNotifier{mailer: mailer, orders: orders}
}

// Notify sends the invoice both as the message body and as a standalone
// text attachment, then flips the order's email_sent flag.
func (n *InvoiceNotifier) Notify(ctx context.Context, inv Invoice) error {
	text := inv.Render()

	msg := Message{
		To:      inv.BuyerEmail,
		ToName:  inv.BuyerName,
		Subject: inv.Subject(),
		Body:    text,
		Attachments: []Attachment{{
			Filename:    inv.Filename(),
			ContentType: "text/plain",
			Content:     []byte(text),
		}},
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}

	if err := n.orders.MarkEmailSent(ctx, inv.OrderID); err != nil {
		return fmt.Errorf("invoice sent but order %d not marked: %w", inv.OrderID, err)
	}
	return nil
}
