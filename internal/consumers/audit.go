package consumers

import (
	"context"
	"time"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// AuditHandler stores a durable copy of every accepted event for replay and
// inspection. It accepts all event variants.
type AuditHandler struct {
	inboxRepo portsrepo.InboxRepository
}

// NewAuditHandler creates the audit event handler.
func NewAuditHandler(inboxRepo portsrepo.InboxRepository) *AuditHandler {
	return &AuditHandler{inboxRepo: inboxRepo}
}

// Ensure AuditHandler implements EventHandler
var _ EventHandler = (*AuditHandler)(nil)

func (h *AuditHandler) Name() string { return "audit" }

func (h *AuditHandler) Handle(ctx context.Context, tx pgx.Tx, event domain.DomainEvent, payload []byte) error {
	return h.inboxRepo.SaveAuditInTx(ctx, tx, domain.AuditRecord{
		MessageID:  event.ID(),
		EventType:  string(event.Type()),
		Payload:    payload,
		OccurredAt: event.OccurredOn(),
		RecordedAt: time.Now().UTC(),
	})
}
