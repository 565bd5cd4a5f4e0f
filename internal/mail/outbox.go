package mail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultOutboxCapacity = 100

// StoredMessage is a message captured by the sandbox outbox.
type StoredMessage struct {
	ID       string
	Message  Message
	StoredAt time.Time
}

// Outbox is the sandbox transport: a disposable in-memory mailbox. Sends never
// leave the process; each one is retrievable through its preview URL until it
// is evicted by newer messages.
type Outbox struct {
	baseURL  string
	capacity int

	mu    sync.Mutex
	order []string
	items map[string]StoredMessage
}

func NewOutbox(baseURL string, capacity int) (*Outbox, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("mail: outbox base url must not be empty")
	}
	if capacity <= 0 {
		capacity = defaultOutboxCapacity
	}
	return &Outbox{
		baseURL:  baseURL,
		capacity: capacity,
		items:    make(map[string]StoredMessage),
	}, nil
}

func (o *Outbox) Open(_ context.Context) (Session, error) {
	return outboxSession{outbox: o}, nil
}

// Get returns a stored message by ID.
func (o *Outbox) Get(id string) (StoredMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.items[id]
	return m, ok
}

// Len reports how many messages are currently retained.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.order)
}

// List returns the retained messages, oldest first.
func (o *Outbox) List() []StoredMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]StoredMessage, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.items[id])
	}
	return out
}

func (o *Outbox) PreviewURL(id string) string {
	return o.baseURL + "/api/outbox/" + id
}

func (o *Outbox) store(msg Message) StoredMessage {
	stored := StoredMessage{ID: uuid.NewString(), Message: msg, StoredAt: time.Now().UTC()}

	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.order) >= o.capacity {
		oldest := o.order[0]
		o.order = o.order[1:]
		delete(o.items, oldest)
	}
	o.order = append(o.order, stored.ID)
	o.items[stored.ID] = stored
	return stored
}

type outboxSession struct {
	outbox *Outbox
}

func (s outboxSession) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if strings.TrimSpace(msg.To) == "" {
		return Receipt{}, errors.New("mail: outbox: recipient must not be empty")
	}
	stored := s.outbox.store(msg)
	return Receipt{ID: stored.ID, PreviewURL: s.outbox.PreviewURL(stored.ID)}, nil
}

func (s outboxSession) Close() error { return nil }
