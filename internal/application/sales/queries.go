package sales

import (
	"context"

	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/entity"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ListSales ventas más recientes primero, con nombre del cliente.
func (uc *SaleUseCase) ListSales(ctx context.Context, page dto.PageRequest) ([]dto.SaleSummaryResponse, error) {
	page = page.Normalize()
	list, err := uc.saleRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleSummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSummaryResponse(s))
	}
	return out, nil
}

// GetSaleDetail cabecera y líneas. El nombre de cada producto se resuelve al leer;
// si el producto fue eliminado se usa el nombre copiado al vender.
func (uc *SaleUseCase) GetSaleDetail(ctx context.Context, id string) (*dto.SaleDetailResponse, error) {
	if id == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	detail, err := uc.saleRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.ErrNotFound
	}
	out := &dto.SaleDetailResponse{
		SaleSummaryResponse: toSummaryResponse(detail.SaleSummary),
		Items:               make([]dto.SaleDetailItemResponse, 0, len(detail.Items)),
	}
	for _, it := range detail.Items {
		out.Items = append(out.Items, dto.SaleDetailItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    lineSubtotal(it),
		})
	}
	return out, nil
}

func lineSubtotal(it repository.SaleDetailItem) decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(entity.MoneyPlaces)
}

func toSummaryResponse(s repository.SaleSummary) dto.SaleSummaryResponse {
	return dto.SaleSummaryResponse{
		ID:         s.ID,
		Date:       s.Date,
		Total:      s.Total,
		Status:     s.Status,
		ClientID:   s.ClientID,
		ClientName: s.ClientName,
		ItemCount:  s.ItemCount,
	}
}
