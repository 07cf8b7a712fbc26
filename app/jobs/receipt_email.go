// Package jobs defines the background jobs the API dispatches.
package jobs

import (
	"fmt"

	"github.com/metrolabs/metro/pkg/mail"
	"github.com/metrolabs/metro/pkg/queue"
)

// ReceiptEmailJobName is the registry key for ReceiptEmailJob.
const ReceiptEmailJobName = "*jobs.ReceiptEmailJob"

// ReceiptEmailJob mails an order confirmation. Dispatched off the
// request path when an order is placed; a failed send retries via the
// queue and eventually lands in failed_jobs.
type ReceiptEmailJob struct {
	OrderID int     `json:"order_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Total   float64 `json:"total"`
}

// Handle sends the receipt.
func (j *ReceiptEmailJob) Handle() error {
	return mail.To(j.Email).
		Subject(fmt.Sprintf("Order #%d confirmed", j.OrderID)).
		Body(fmt.Sprintf(
			"<p>Hi %s,</p><p>Thanks for your order! Order <b>#%d</b> for <b>$%.2f</b> is confirmed.</p>",
			j.Name, j.OrderID, j.Total,
		)).
		Send()
}

// Register makes the job deserialisable by the queue workers.
// Call once at boot.
func Register() {
	queue.Register(ReceiptEmailJobName, func() queue.Job { return &ReceiptEmailJob{} })
}
