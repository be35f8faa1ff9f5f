package inventory

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// Snapshot foto del catálogo y sus indicadores para una ventana de consumo.
type Snapshot struct {
	Items      []entity.CatalogItem
	Indicators []entity.StockIndicator
	PeriodDays int
	TakenAt    time.Time
}

// IndicatorsUseCase calcula los indicadores de stock a partir del catálogo y del libro de movimientos.
type IndicatorsUseCase struct {
	catalog       repository.CatalogRepository
	movements     repository.MovementRepository
	cache         SnapshotCache // opcional
	defaultPeriod int
	now           func() time.Time
}

// NewIndicatorsUseCase construye el caso de uso. defaultPeriod <= 0 usa 30 días.
func NewIndicatorsUseCase(
	catalog repository.CatalogRepository,
	movements repository.MovementRepository,
	cache SnapshotCache,
	defaultPeriod int,
) *IndicatorsUseCase {
	if defaultPeriod <= 0 {
		defaultPeriod = domaininv.DefaultPeriodDays
	}
	return &IndicatorsUseCase{
		catalog:       catalog,
		movements:     movements,
		cache:         cache,
		defaultPeriod: defaultPeriod,
		now:           time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *IndicatorsUseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *IndicatorsUseCase) period(periodDays int) int {
	if periodDays == 0 {
		return uc.defaultPeriod
	}
	return periodDays
}

// Snapshot lee ítems y movimientos en paralelo y deriva los indicadores.
// periodDays 0 usa el período por defecto; negativo es un error de validación.
func (uc *IndicatorsUseCase) Snapshot(ctx context.Context, filter repository.CatalogFilter, periodDays int) (*Snapshot, error) {
	periodDays = uc.period(periodDays)
	now := uc.now()
	since := now.AddDate(0, 0, -periodDays)

	var (
		items []entity.CatalogItem
		movs  []entity.MovementRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = uc.catalog.ListItems(gctx, filter)
		if err != nil {
			return fmt.Errorf("listar catálogo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		movs, err = uc.movements.ListMovements(gctx, nil, since, now)
		if err != nil {
			return fmt.Errorf("listar movimientos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indicators, err := domaininv.ComputeIndicators(items, movs, periodDays, now)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Items: items, Indicators: indicators, PeriodDays: periodDays, TakenAt: now}, nil
}

// ComputeIndicators devuelve los indicadores de todos los ítems del filtro, en el orden del catálogo.
// Con caché configurada el resultado se guarda por período y filtro hasta el próximo Bump.
func (uc *IndicatorsUseCase) ComputeIndicators(ctx context.Context, q dto.IndicatorQuery) ([]dto.StockIndicatorDTO, error) {
	filter := repository.CatalogFilter{CategoryID: q.CategoryID, OnlyEPI: q.OnlyEPI}
	load := func(ctx context.Context) ([]dto.StockIndicatorDTO, error) {
		snap, err := uc.Snapshot(ctx, filter, q.PeriodDays)
		if err != nil {
			return nil, err
		}
		return toIndicatorDTOs(snap.Items, snap.Indicators), nil
	}
	// entradas inválidas no se cachean
	if uc.cache == nil || q.PeriodDays < 0 {
		return load(ctx)
	}
	key := fmt.Sprintf("stock:indicators:%d:%s:%t", uc.period(q.PeriodDays), q.CategoryID, q.OnlyEPI)
	var out []dto.StockIndicatorDTO
	err := uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.StockIndicatorDTO{}
	}
	return out, nil
}
