package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/inventory"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/jhoicas/gelp-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Tipos de ajuste reportados a métricas.
const (
	AdjustKindSet   = "set"
	AdjustKindDelta = "delta"
	AdjustKindEntry = "entry"
	AdjustKindSale  = "sale"
)

// StockLedgerUseCase es el dueño de la cantidad por producto y de su invariante (nunca negativa).
// Toda escritura pasa por una transacción con las filas de stock bloqueadas (SELECT FOR UPDATE)
// en orden de ProductID.
type StockLedgerUseCase struct {
	txRunner     ports.TxRunner
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	entryRepo    repository.StockEntryRepository
	metrics      ports.SalesMetrics
	log          *logger.Logger
	timeout      time.Duration
	now          func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso. timeout acota cada escritura; 0 = sin límite propio.
func NewStockLedgerUseCase(
	txRunner ports.TxRunner,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	entryRepo repository.StockEntryRepository,
	metrics ports.SalesMetrics,
	log *logger.Logger,
	timeout time.Duration,
) *StockLedgerUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedgerUseCase{
		txRunner:     txRunner,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		entryRepo:    entryRepo,
		metrics:      metrics,
		log:          log.Component("stock"),
		timeout:      timeout,
		now:          time.Now,
	}
}

func (uc *StockLedgerUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// GetQuantity devuelve la cantidad actual. La ausencia de fila es stock cero, no error.
func (uc *StockLedgerUseCase) GetQuantity(ctx context.Context, productID string) (*dto.StockLevelResponse, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	level, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := &dto.StockLevelResponse{ProductID: productID, Quantity: level.Quantity}
	if !level.LastUpdated.IsZero() {
		t := level.LastUpdated
		out.LastUpdated = &t
	}
	return out, nil
}

// SetQuantity upsert absoluto. Rechaza cantidades negativas antes de tocar el almacenamiento.
func (uc *StockLedgerUseCase) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if err := inventory.ValidateQuantity(quantity); err != nil {
		return err
	}
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	err := uc.txRunner.Run(ctx, func(tx ports.TxRepositories) error {
		if err := requireProducts(ctx, tx.Products, []string{productID}); err != nil {
			return err
		}
		if _, err := tx.Stock.LockForUpdate(ctx, []string{productID}); err != nil {
			return err
		}
		return tx.Stock.Upsert(ctx, &entity.StockLevel{
			ProductID:   productID,
			Quantity:    quantity,
			LastUpdated: uc.now(),
		})
	})
	if err != nil {
		return err
	}
	uc.metrics.StockAdjusted(AdjustKindSet, 1)
	uc.log.Info().Str("product_id", productID).Int("quantity", quantity).Msg("stock fijado")
	return nil
}

// Adjust cambio relativo para un producto; devuelve la cantidad resultante.
func (uc *StockLedgerUseCase) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	out, err := uc.AdjustMany(ctx, []inventory.Delta{{ProductID: productID, Amount: delta}})
	if err != nil {
		return 0, err
	}
	return out[productID], nil
}

// AdjustMany aplica todos los deltas como un grupo atómico: todos o ninguno.
func (uc *StockLedgerUseCase) AdjustMany(ctx context.Context, deltas []inventory.Delta) (map[string]int, error) {
	if len(deltas) == 0 {
		return nil, domain.Invalid("items", "al menos un ajuste")
	}
	for _, d := range deltas {
		if strings.TrimSpace(d.ProductID) == "" {
			return nil, domain.Invalid("product_id", "requerido")
		}
		if err := inventory.ValidateDelta(d.Amount); err != nil {
			return nil, err
		}
	}
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	var result map[string]int
	err := uc.txRunner.Run(ctx, func(tx ports.TxRepositories) error {
		var err error
		result, err = AdjustManyInTx(ctx, tx, deltas, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockAdjusted(AdjustKindDelta, len(result))
	return result, nil
}

// AdjustManyInTx núcleo del libro de stock, ejecutado con los repositorios de la transacción
// del caller (el coordinador de ventas lo usa dentro de su propia transacción).
// Si algún producto quedaría negativo devuelve *domain.InsufficientStockError y no escribe nada;
// el caller debe hacer rollback. Devuelve la cantidad final de cada producto tocado.
func AdjustManyInTx(ctx context.Context, tx ports.TxRepositories, deltas []inventory.Delta, now time.Time) (map[string]int, error) {
	merged := inventory.MergeDeltas(deltas)
	ids := make([]string, len(merged))
	for i, d := range merged {
		ids[i] = d.ProductID
	}
	if err := requireProducts(ctx, tx.Products, ids); err != nil {
		return nil, err
	}
	current, err := tx.Stock.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	next, err := inventory.Plan(current, merged)
	if err != nil {
		return nil, err
	}
	for _, d := range merged {
		if d.Amount == 0 {
			continue
		}
		if err := tx.Stock.Upsert(ctx, &entity.StockLevel{
			ProductID:   d.ProductID,
			Quantity:    next[d.ProductID],
			LastUpdated: now,
		}); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func requireProducts(ctx context.Context, repo repository.ProductRepository, ids []string) error {
	found, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return domain.ErrNotFound
		}
	}
	return nil
}

// ListStock proyección de stock con nombre de producto, ordenada por nombre.
func (uc *StockLedgerUseCase) ListStock(ctx context.Context) ([]dto.StockListItemResponse, error) {
	rows, err := uc.stockRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockListItemResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.StockListItemResponse{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
		}
		if !r.LastUpdated.IsZero() {
			t := r.LastUpdated
			item.LastUpdated = &t
		}
		out = append(out, item)
	}
	return out, nil
}

// RegisterEntry registra una entrada de mercadería: suma la cantidad al stock, recalcula el
// costo promedio ponderado del producto y guarda el registro, todo en una transacción.
func (uc *StockLedgerUseCase) RegisterEntry(ctx context.Context, in dto.CreateStockEntryRequest) (*dto.StockEntryResponse, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.Quantity > inventory.MaxQuantity {
		return nil, domain.Invalid("quantity", "excede el máximo")
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	var expiry *time.Time
	if in.ExpiryDate != "" {
		t, err := time.Parse(time.DateOnly, in.ExpiryDate)
		if err != nil {
			return nil, domain.Invalid("expiry_date", "formato YYYY-MM-DD")
		}
		expiry = &t
	}
	if in.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrNotFound
		}
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	now := uc.now()
	entry := &entity.StockEntry{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost.Round(entity.MoneyPlaces),
		EntryDate:  now,
		ExpiryDate: expiry,
		LotNumber:  strings.TrimSpace(in.LotNumber),
		CreatedAt:  now,
	}
	var newQty int
	err := uc.txRunner.Run(ctx, func(tx ports.TxRepositories) error {
		product, err := tx.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		current, err := tx.Stock.LockForUpdate(ctx, []string{in.ProductID})
		if err != nil {
			return err
		}
		have := current[in.ProductID]
		newCost := inventory.CostCalculator(have, product.Cost, in.Quantity, entry.UnitCost)
		if err := tx.Products.UpdateCost(ctx, in.ProductID, newCost); err != nil {
			return err
		}
		newQty, err = inventory.ApplyDelta(in.ProductID, have, in.Quantity)
		if err != nil {
			return err
		}
		if err := tx.Stock.Upsert(ctx, &entity.StockLevel{ProductID: in.ProductID, Quantity: newQty, LastUpdated: now}); err != nil {
			return err
		}
		return tx.StockEntries.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockAdjusted(AdjustKindEntry, 1)
	uc.log.Info().Str("product_id", in.ProductID).Int("quantity", in.Quantity).Int("new_quantity", newQty).Msg("entrada de stock registrada")

	out := toEntryResponse(entry)
	out.NewQuantity = newQty
	return &out, nil
}

// ListEntries lista entradas (filtradas por producto si se indica).
func (uc *StockLedgerUseCase) ListEntries(ctx context.Context, productID string, page dto.PageRequest) ([]dto.StockEntryResponse, error) {
	page = page.Normalize()
	list, err := uc.entryRepo.List(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEntryResponse(e))
	}
	return out, nil
}

func toEntryResponse(e *entity.StockEntry) dto.StockEntryResponse {
	out := dto.StockEntryResponse{
		ID:         e.ID,
		ProductID:  e.ProductID,
		SupplierID: e.SupplierID,
		Quantity:   e.Quantity,
		UnitCost:   e.UnitCost,
		EntryDate:  e.EntryDate,
		LotNumber:  e.LotNumber,
	}
	if e.ExpiryDate != nil {
		out.ExpiryDate = e.ExpiryDate.Format(time.DateOnly)
	}
	return out
}
