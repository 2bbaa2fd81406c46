package sales

import (
	"time"

	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
	"github.com/dynsoft/pharma-ledger/internal/infrastructure/metrics"
	"github.com/dynsoft/pharma-ledger/pkg/logger"
)

// Series de numeración legible.
const (
	SeriesSale   = "VNT"
	SeriesReturn = "RET"
)

// UseCase ventas y devoluciones. Todo cambio de stock pasa por el Ledger.
type UseCase struct {
	txRunner inventory.TxRunner
	sales    repository.SaleRepository
	returns  repository.ReturnRepository
	settings repository.SettingsRepository
	ledger   *inventory.Ledger
	metrics  *metrics.LedgerMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso de ventas.
func NewUseCase(
	txRunner inventory.TxRunner,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
	settings repository.SettingsRepository,
	ledger *inventory.Ledger,
	m *metrics.LedgerMetrics,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner: txRunner,
		sales:    sales,
		returns:  returns,
		settings: settings,
		ledger:   ledger,
		metrics:  m,
		log:      log.Component("sales"),
		now:      time.Now,
	}
}
