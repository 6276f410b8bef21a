package consumers

import (
	"context"
	"log/slog"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// AntifraudHandler applies ClientBlocked/ClientUnblocked events by flipping
// the frozen flag on every account owned by the client. Once the flag commits,
// balance-decreasing mutations against those accounts are rejected until the
// client is unblocked.
type AntifraudHandler struct {
	accountRepo portsrepo.AccountRepository
	logger      *slog.Logger
}

// NewAntifraudHandler creates the antifraud event handler.
func NewAntifraudHandler(accountRepo portsrepo.AccountRepository, logger *slog.Logger) *AntifraudHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AntifraudHandler{accountRepo: accountRepo, logger: logger}
}

// Ensure AntifraudHandler implements EventHandler
var _ EventHandler = (*AntifraudHandler)(nil)

func (h *AntifraudHandler) Name() string { return "antifraud" }

func (h *AntifraudHandler) Handle(ctx context.Context, tx pgx.Tx, event domain.DomainEvent, _ []byte) error {
	switch e := event.(type) {
	case domain.ClientBlocked:
		h.logger.InfoContext(ctx, "Freezing accounts for blocked client", slog.String("client_id", e.ClientID))
		return h.accountRepo.UpdateIsFrozenByOwnerInTx(ctx, tx, e.ClientID, true)
	case domain.ClientUnblocked:
		h.logger.InfoContext(ctx, "Unfreezing accounts for unblocked client", slog.String("client_id", e.ClientID))
		return h.accountRepo.UpdateIsFrozenByOwnerInTx(ctx, tx, e.ClientID, false)
	default:
		// Other event types routed here have no antifraud effect.
		h.logger.InfoContext(ctx, "No antifraud effect for event", slog.String("event_type", string(event.Type())))
		return nil
	}
}
