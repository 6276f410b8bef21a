package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrellis/bank-accounts/internal/core/ports/messaging"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/bank-accounts/internal/core/ports/services"
	"github.com/fintrellis/bank-accounts/internal/core/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	accountService portssvc.AccountService,
	currencyService *services.CurrencyService,
	broker messaging.Publisher,
	outboxRepo portsrepo.OutboxRepository,
	readyThreshold int,
) {
	registerHealthRoutes(r, broker, outboxRepo, readyThreshold)

	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, accountService)
	registerTransferRoutes(v1, accountService)
	registerCurrencyRoutes(v1, currencyService)
}
