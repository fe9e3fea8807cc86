// services/dispatcher.go
package services

import (
	"fmt"
	"log"
	"sync"

	"resort-backend/models"
	"resort-backend/utils"
)

// Notification kinds.
const (
	NotifyConfirmation = "booking-confirmation"
	NotifyCancellation = "cancellation"
)

// Dispatcher hands off invoice notifications for out-of-band delivery.
// Dispatch is fire-and-forget: it must never block the response path and
// delivery failures are logged, not surfaced or retried.
type Dispatcher interface {
	Enqueue(inv models.Invoice, kind string)
}

// EmailDispatcher is a buffered-channel outbox with a single worker
// goroutine delivering over SMTP.
type EmailDispatcher struct {
	queue chan notification
	wg    sync.WaitGroup
}

type notification struct {
	invoice models.Invoice
	kind    string
}

func NewEmailDispatcher(buffer int) *EmailDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &EmailDispatcher{queue: make(chan notification, buffer)}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue queues a notification. A full queue drops the notification with a
// log line rather than blocking the caller.
func (d *EmailDispatcher) Enqueue(inv models.Invoice, kind string) {
	select {
	case d.queue <- notification{invoice: inv, kind: kind}:
	default:
		log.Printf("warning: notification queue full, dropping %s for %s", kind, inv.BookingCode)
	}
}

// Close drains the queue and stops the worker. Called on shutdown.
func (d *EmailDispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *EmailDispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *EmailDispatcher) deliver(n notification) {
	inv := n.invoice
	if inv.CustomerEmail == "" {
		log.Printf("warning: no customer email on invoice %s, skipping %s notice", inv.BookingCode, n.kind)
		return
	}

	lines := make([]utils.LineInfo, 0, len(inv.Rooms)+len(inv.Services))
	for _, r := range inv.Rooms {
		lines = append(lines, utils.LineInfo{
			Title: r.Title,
			Detail: fmt.Sprintf("%s → %s (%d nights)",
				r.CheckIn.Format("2006-01-02"), r.CheckOut.Format("2006-01-02"), r.Nights),
			Amount: r.TotalPrice,
		})
	}
	for _, s := range inv.Services {
		detail := ""
		if dates := s.Dates(); len(dates) > 0 {
			detail = fmt.Sprintf("%d date(s)", len(dates))
		}
		lines = append(lines, utils.LineInfo{Title: s.Title, Detail: detail, Amount: s.TotalPrice})
	}

	if err := utils.SendBookingEmail(n.kind, inv.CustomerEmail, inv.BookingCode, inv.CustomerName, lines, inv.TotalAmount); err != nil {
		log.Printf("warning: %s notification for %s failed: %v", n.kind, inv.BookingCode, err)
	}
}
