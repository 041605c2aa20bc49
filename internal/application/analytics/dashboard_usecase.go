// Package analytics contiene las proyecciones de solo lectura del panel principal.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gelp-api/internal/application/dto"
	"github.com/jhoicas/gelp-api/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// DashboardUseCase conteos del panel, recalculados en cada llamada sobre el estado confirmado.
type DashboardUseCase struct {
	repo repository.DashboardRepository
	loc  *time.Location
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc define qué es "hoy"; nil = UTC.
func NewDashboardUseCase(repo repository.DashboardRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{repo: repo, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// DayRange intervalo semiabierto [inicio, inicio del día siguiente) del día de t en loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// GetCounts las cuatro consultas en paralelo:
//  1. CountProducts
//  2. CountProductsInStock (quantity > 0)
//  3. CountClients
//  4. CountSalesBetween(hoy)
func (uc *DashboardUseCase) GetCounts(ctx context.Context) (*dto.DashboardCountsDTO, error) {
	start, end := DayRange(uc.now(), uc.loc)
	out := &dto.DashboardCountsDTO{Timezone: uc.loc.String()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.repo.CountProducts(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		out.TotalProducts = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.repo.CountProductsInStock(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: productos en stock: %w", err)
		}
		out.ProductsInStock = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.repo.CountClients(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: clientes: %w", err)
		}
		out.TotalClients = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.repo.CountSalesBetween(gctx, start, end)
		if err != nil {
			return fmt.Errorf("dashboard: ventas de hoy: %w", err)
		}
		out.SalesToday = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
