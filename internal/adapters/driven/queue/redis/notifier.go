package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driven"
)

// DefaultQueue is the list downstream workers consume from.
const DefaultQueue = "billfeed:stored"

// job is the envelope pushed per stored bill.
type job struct {
	ExternalID   string `json:"external_id"`
	SourceID     int    `json:"source_id"`
	Jurisdiction string `json:"jurisdiction"`
	BillNumber   string `json:"bill_number"`
	Title        string `json:"title"`
	VersionDate  string `json:"version_date"`
	EnqueuedAt   string `json:"enqueued_at"`
}

// Notifier pushes stored-bill jobs onto a Redis list. A nil Notifier
// or one without a client is a no-op, so callers can wire it
// unconditionally.
type Notifier struct {
	rdb   *goredis.Client
	queue string
	now   func() time.Time
}

var _ driven.Notifier = (*Notifier)(nil)

type Option func(*Notifier)

// WithQueue overrides the destination list name.
func WithQueue(queue string) Option {
	return func(n *Notifier) {
		if q := strings.TrimSpace(queue); q != "" {
			n.queue = q
		}
	}
}

func NewNotifier(rdb *goredis.Client, opts ...Option) *Notifier {
	n := &Notifier{
		rdb:   rdb,
		queue: DefaultQueue,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Connect builds a notifier from a redis:// URL. An empty URL yields
// a disabled notifier rather than an error.
func Connect(url string, opts ...Option) (*Notifier, error) {
	if strings.TrimSpace(url) == "" {
		return NewNotifier(nil, opts...), nil
	}

	cfg, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return NewNotifier(goredis.NewClient(cfg), opts...), nil
}

// Enabled reports whether notifications will actually be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// BillStored enqueues a job for the given bill.
func (n *Notifier) BillStored(ctx context.Context, bill domain.Bill) error {
	if !n.Enabled() {
		return nil
	}

	payload, err := json.Marshal(newJob(bill, n.now()))
	if err != nil {
		return fmt.Errorf("encoding job for %s: %w", bill.ExternalID, err)
	}

	if err := n.rdb.LPush(ctx, n.queue, payload).Err(); err != nil {
		return fmt.Errorf("enqueuing %s: %w", bill.ExternalID, err)
	}
	return nil
}

// Close releases the underlying connection.
func (n *Notifier) Close() error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Close()
}

func newJob(bill domain.Bill, at time.Time) job {
	return job{
		ExternalID:   bill.ExternalID,
		SourceID:     bill.SourceID,
		Jurisdiction: bill.Jurisdiction,
		BillNumber:   bill.BillNumber,
		Title:        bill.Title,
		VersionDate:  bill.VersionDate.Format("2006-01-02"),
		EnqueuedAt:   at.UTC().Format(time.RFC3339),
	}
}
