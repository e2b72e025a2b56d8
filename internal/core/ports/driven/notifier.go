package driven

import (
	"context"

	"github.com/civicsignal/billfeed/internal/core/domain"
)

// Notifier hands newly stored bills to downstream consumers. Delivery
// is synchronous and at-least-once: the orchestrator notifies after a
// successful upsert, and a crash between upsert and notification may
// drop a notification.
type Notifier interface {
	// BillStored announces one newly inserted bill.
	BillStored(ctx context.Context, bill domain.Bill) error
}
