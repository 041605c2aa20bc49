// Package sales coordina el registro atómico de ventas: cabecera, líneas y descuento de stock
// como una sola unidad confirmada o revertida por completo.
package sales

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	appinventory "github.com/jhoicas/gelp-api/internal/application/inventory"
	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/inventory"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/jhoicas/gelp-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config límites del coordinador.
type Config struct {
	Timeout      time.Duration // plazo total de RegisterSale, reintentos incluidos; 0 = sin límite propio
	MaxAttempts  int           // intentos ante domain.ErrConflict
	RetryInitial time.Duration
	RetryMax     time.Duration
}

// SaleUseCase coordinador de ventas.
type SaleUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	saleRepo    repository.SaleRepository
	cache       ports.IdempotencyCache
	metrics     ports.SalesMetrics
	log         *logger.Logger
	cfg         Config
	now         func() time.Time
}

// NewSaleUseCase construye el coordinador. cache y metrics pueden ser nil.
func NewSaleUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	saleRepo repository.SaleRepository,
	cache ports.IdempotencyCache,
	metrics ports.SalesMetrics,
	log *logger.Logger,
	cfg Config,
) *SaleUseCase {
	if cache == nil {
		cache = ports.NopIdempotencyCache{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 25 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 250 * time.Millisecond
	}
	return &SaleUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		saleRepo:    saleRepo,
		cache:       cache,
		metrics:     metrics,
		log:         log.Component("sales"),
		cfg:         cfg,
		now:         time.Now,
	}
}

// RegisterSale valida la solicitud, recalcula el total en el servidor y persiste la venta
// en una transacción junto con el descuento de stock de todas sus líneas.
//
// Con IdempotencyKey, una repetición con el mismo contenido devuelve la venta original
// (Replayed=true) y una repetición con contenido distinto devuelve domain.ErrIdempotencyMismatch.
func (uc *SaleUseCase) RegisterSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	start := time.Now()
	out, err := uc.registerSale(ctx, in)
	if err != nil {
		uc.metrics.SaleFailed(failureReason(err))
		return nil, err
	}
	if out.Replayed {
		uc.metrics.SaleReplayed()
	} else {
		uc.metrics.SaleCommitted(out.Total, time.Since(start))
	}
	return out, nil
}

func (uc *SaleUseCase) registerSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	// Antes de abrir cualquier recurso transaccional.
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptySale
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, domain.Invalid("product_id", "requerido")
		}
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if item.Quantity > inventory.MaxQuantity {
			return nil, domain.Invalid("quantity", "excede el máximo")
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.Invalid("unit_price", "no puede ser negativo")
		}
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	hash := requestHash(in)
	if key != "" {
		if out, err := uc.replay(ctx, key, hash); out != nil || err != nil {
			return out, err
		}
	}

	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrNotFound
		}
	}

	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:             uuid.New().String(),
		Status:         entity.SaleStatusCompleted,
		ClientID:       in.ClientID,
		IdempotencyKey: key,
		RequestHash:    hash,
		Items:          make([]entity.SaleItem, 0, len(in.Items)),
	}
	deltas := make([]inventory.Delta, 0, len(in.Items))
	for _, item := range in.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !product.IsActive() {
			return nil, domain.Invalid("product_id", "producto inactivo: "+product.ID)
		}
		sale.Items = append(sale.Items, entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Round(entity.MoneyPlaces),
		})
		deltas = append(deltas, inventory.Delta{ProductID: item.ProductID, Amount: -item.Quantity})
	}
	sale.Total = entity.SaleTotal(sale.Items)

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	err = uc.commitWithRetry(ctx, sale, deltas)
	if errors.Is(err, domain.ErrDuplicate) && key != "" {
		// Otra solicitud con la misma clave confirmó primero.
		if out, rerr := uc.replay(ctx, key, hash); out != nil || rerr != nil {
			return out, rerr
		}
	}
	if err != nil {
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			uc.log.Warn().Interface("shortages", short.Shortages).Msg("venta rechazada por stock insuficiente")
		} else if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("registrar venta")
		}
		return nil, err
	}

	uc.metrics.StockAdjusted(appinventory.AdjustKindSale, len(inventory.MergeDeltas(deltas)))
	if key != "" {
		rec := ports.IdempotencyRecord{SaleID: sale.ID, RequestHash: hash, Total: sale.Total}
		if cerr := uc.cache.Put(ctx, key, rec); cerr != nil {
			uc.log.Warn().Err(cerr).Str("idempotency_key", key).Msg("caché de idempotencia")
		}
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Int("items", len(sale.Items)).
		Str("total", sale.Total.StringFixed(entity.MoneyPlaces)).
		Msg("venta registrada")

	return &dto.CreateSaleResponse{SaleID: sale.ID, Total: sale.Total}, nil
}

// withTimeout aplica cfg.Timeout; sin plazo configurado solo rige el del caller.
func (uc *SaleUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.cfg.Timeout)
}

// commitWithRetry ejecuta la transacción completa; solo ErrConflict se reintenta.
func (uc *SaleUseCase) commitWithRetry(ctx context.Context, sale *entity.Sale, deltas []inventory.Delta) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.cfg.RetryInitial
	b.MaxInterval = uc.cfg.RetryMax

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			uc.metrics.SaleRetried()
			uc.log.Debug().Str("sale_id", sale.ID).Int("attempt", attempt).Msg("reintentando venta")
		}
		err := uc.txRunner.Run(ctx, func(tx ports.TxRepositories) error {
			now := uc.now()
			sale.Date = now
			if err := tx.Sales.Create(ctx, sale); err != nil {
				return err
			}
			_, err := appinventory.AdjustManyInTx(ctx, tx, deltas, now)
			return err
		})
		if err == nil || errors.Is(err, domain.ErrConflict) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(uc.cfg.MaxAttempts)))

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if err != nil && !errors.Is(err, domain.ErrConflict) &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		err = fmt.Errorf("%w: venta no confirmada dentro del plazo", domain.ErrTimeout)
	}
	return err
}

// replay devuelve la venta ya registrada con key, o (nil, nil) si no existe.
func (uc *SaleUseCase) replay(ctx context.Context, key, hash string) (*dto.CreateSaleResponse, error) {
	rec, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("idempotency_key", key).Msg("caché de idempotencia")
		rec = nil
	}
	if rec == nil {
		sale, err := uc.saleRepo.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, nil
		}
		rec = &ports.IdempotencyRecord{SaleID: sale.ID, RequestHash: sale.RequestHash, Total: sale.Total}
	}
	if rec.RequestHash != hash {
		return nil, domain.ErrIdempotencyMismatch
	}
	uc.log.Info().Str("sale_id", rec.SaleID).Str("idempotency_key", key).Msg("venta repetida, se devuelve la original")
	return &dto.CreateSaleResponse{SaleID: rec.SaleID, Total: rec.Total, Replayed: true}, nil
}

// requestHash huella canónica del contenido de la venta (cliente + líneas en orden).
func requestHash(in dto.CreateSaleRequest) string {
	var sb strings.Builder
	sb.WriteString(in.ClientID)
	for _, item := range in.Items {
		fmt.Fprintf(&sb, "|%s:%d:%s", item.ProductID, item.Quantity, item.UnitPrice.StringFixed(entity.MoneyPlaces))
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return ports.FailureInsufficient
	case errors.Is(err, domain.ErrInvalidInput):
		return ports.FailureValidation
	case errors.Is(err, domain.ErrNotFound):
		return ports.FailureNotFound
	case errors.Is(err, domain.ErrConflict):
		return ports.FailureConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		return ports.FailureStorage
	default:
		return ports.FailureOther
	}
}
