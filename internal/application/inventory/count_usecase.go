package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// CountOptions opciones del inventario cíclico.
type CountOptions struct {
	// AllowOverlapping permite abrir una sesión cuyo alcance se solapa con otra ACTIVE.
	AllowOverlapping bool
}

// CountUseCase orquesta las sesiones de conteo: apertura, registro, cierre con ajustes y cancelación.
// Las operaciones que mutan una sesión se serializan dentro del proceso.
type CountUseCase struct {
	mu       sync.Mutex
	sessions repository.CountSessionRepository
	catalog  repository.CatalogRepository
	applier  *AdjustmentApplier
	cache    SnapshotCache // opcional
	opts     CountOptions
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewCountUseCase construye el caso de uso.
func NewCountUseCase(
	sessions repository.CountSessionRepository,
	catalog repository.CatalogRepository,
	applier *AdjustmentApplier,
	cache SnapshotCache,
	opts CountOptions,
	log zerolog.Logger,
) *CountUseCase {
	return &CountUseCase{
		sessions: sessions,
		catalog:  catalog,
		applier:  applier,
		cache:    cache,
		opts:     opts,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *CountUseCase) SetClock(now func() time.Time) { uc.now = now }

// StartCount abre una sesión ACTIVE congelando la cantidad contable de los ítems del alcance.
// responsible vacío en el request toma fallbackResponsible (usuario del token).
func (uc *CountUseCase) StartCount(ctx context.Context, req dto.StartCountRequest, fallbackResponsible string) (*dto.CountSessionDTO, error) {
	responsible := strings.TrimSpace(req.Responsible)
	if responsible == "" {
		responsible = fallbackResponsible
	}
	scope := entity.ScopeCategory(strings.TrimSpace(req.CategoryID))

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.opts.AllowOverlapping {
		active, err := uc.sessions.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("listar sesiones activas: %w", err)
		}
		for _, s := range active {
			if s.Scope.Overlaps(scope) {
				return nil, fmt.Errorf("%w: la sesión %s (%s) sigue activa", domain.ErrConflict, s.ID, s.Scope)
			}
		}
	}

	items, err := uc.catalog.ListItems(ctx, repository.CatalogFilter{CategoryID: scope.CategoryID})
	if err != nil {
		return nil, fmt.Errorf("listar catálogo: %w", err)
	}
	session, err := entity.NewCountSession(uc.newID(), scope, responsible, items, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("session_id", session.ID).
		Str("scope", scope.String()).
		Str("responsible", responsible).
		Int("items", len(items)).
		Msg("sesión de conteo abierta")
	return toCountSessionDTO(session), nil
}

// RecordCount registra, sobrescribe o limpia (physicalQty nil) el conteo de un ítem.
func (uc *CountUseCase) RecordCount(ctx context.Context, sessionID, itemID string, physicalQty *int) (*dto.CountEntryDTO, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entry, err := session.RecordCount(itemID, physicalQty, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	out := toCountEntryDTO(entry)
	return &out, nil
}

// FinishCount cierra la sesión, aplica los ajustes de las divergencias y devuelve resumen y reporte.
// La sesión queda COMPLETED aunque alguna escritura falle; esos ítems se pueden reintentar.
func (uc *CountUseCase) FinishCount(ctx context.Context, sessionID string) (*dto.FinishCountResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	divergences, err := session.Finish(uc.now())
	if err != nil {
		return nil, err
	}
	// COMPLETED se persiste antes de tocar el catálogo
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	report, err := uc.applier.Apply(ctx, session, divergences)
	if err != nil {
		return nil, err
	}
	uc.afterApply(ctx, session, report)

	uc.log.Info().
		Str("session_id", session.ID).
		Int("divergences", len(divergences)).
		Int("adjusted", len(report.Succeeded)).
		Int("failed", len(report.Failed)).
		Msg("sesión de conteo finalizada")

	return &dto.FinishCountResponse{
		Summary:          toCountSummaryDTO(session.Summary(len(report.Succeeded))),
		AdjustmentReport: toAdjustmentReportDTO(report),
	}, nil
}

// CancelCount descarta la sesión sin tocar el catálogo.
func (uc *CountUseCase) CancelCount(ctx context.Context, sessionID string) (*dto.CountSummaryDTO, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Cancel(uc.now()); err != nil {
		return nil, err
	}
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", session.ID).Msg("sesión de conteo cancelada")

	sum := toCountSummaryDTO(session.Summary(0))
	return &sum, nil
}

// RetryAdjustments reintenta los ajustes pendientes de una sesión COMPLETED. itemIDs vacío
// reintenta todos; un ítem sin ajuste pendiente es un error de validación.
func (uc *CountUseCase) RetryAdjustments(ctx context.Context, sessionID string, itemIDs []string) (*dto.AdjustmentReportDTO, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != entity.CountStatusCompleted {
		return nil, domain.NewInvalidStateError("count_session", "retryAdjustments", string(session.Status))
	}

	pending := session.PendingAdjustments()
	if len(itemIDs) > 0 {
		byID := make(map[string]entity.CountEntry, len(pending))
		for _, e := range pending {
			byID[e.ItemID] = e
		}
		selected := make([]entity.CountEntry, 0, len(itemIDs))
		for _, id := range itemIDs {
			e, ok := byID[id]
			if !ok {
				return nil, domain.NewValidationError("item_ids", "el ítem "+id+" no tiene ajuste pendiente")
			}
			selected = append(selected, e)
		}
		pending = selected
	}

	report, err := uc.applier.Apply(ctx, session, pending)
	if err != nil {
		return nil, err
	}
	uc.afterApply(ctx, session, report)

	out := toAdjustmentReportDTO(report)
	return &out, nil
}

// afterApply persiste las marcas de ajuste e invalida la caché de indicadores.
// Las fallas se registran: el catálogo ya fue escrito y reescribir la misma cantidad es inocuo.
func (uc *CountUseCase) afterApply(ctx context.Context, session *entity.CountSession, report AdjustmentReport) {
	if len(report.Succeeded) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := uc.sessions.Update(ctx, session); err != nil {
		uc.log.Error().Err(err).Str("session_id", session.ID).Msg("no se pudieron persistir las marcas de ajuste")
	}
	if uc.cache != nil {
		if err := uc.cache.Bump(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de indicadores")
		}
	}
}

// Progress devuelve el avance de la sesión; válido en cualquier estado.
func (uc *CountUseCase) Progress(ctx context.Context, sessionID string) (*dto.CountProgressDTO, error) {
	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p := toCountProgressDTO(session)
	return &p, nil
}

// GetSession devuelve la sesión con sus líneas tocadas.
func (uc *CountUseCase) GetSession(ctx context.Context, sessionID string) (*dto.CountSessionDTO, error) {
	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toCountSessionDTO(session), nil
}

// CountSheet devuelve la sesión y los ítems de su alcance para exportar la planilla de conteo.
func (uc *CountUseCase) CountSheet(ctx context.Context, sessionID string) (*entity.CountSession, []entity.CatalogItem, error) {
	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.catalog.GetByIDs(ctx, session.ItemIDs())
	if err != nil {
		return nil, nil, fmt.Errorf("leer ítems de la sesión: %w", err)
	}
	return session, items, nil
}

// ImportCounts registra en bloque los conteos de una planilla. Si alguna línea es inválida no se
// persiste ninguna.
func (uc *CountUseCase) ImportCounts(ctx context.Context, sessionID string, counts []dto.CountInput) (*dto.CountProgressDTO, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	session, err := uc.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	for _, c := range counts {
		q := c.PhysicalQty
		if _, err := session.RecordCount(c.ItemID, &q, now); err != nil {
			return nil, err
		}
	}
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	uc.log.Info().Str("session_id", session.ID).Int("counts", len(counts)).Msg("planilla de conteo importada")

	p := toCountProgressDTO(session)
	return &p, nil
}

// ListSessions lista sesiones; activeOnly ignora la paginación.
func (uc *CountUseCase) ListSessions(ctx context.Context, activeOnly bool, page dto.PageRequest) ([]dto.CountSessionDTO, error) {
	var (
		list []*entity.CountSession
		err  error
	)
	if activeOnly {
		list, err = uc.sessions.ListActive(ctx)
	} else {
		page.DefaultPage()
		list, err = uc.sessions.List(ctx, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.CountSessionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, *toCountSessionDTO(s))
	}
	return out, nil
}

func (uc *CountUseCase) load(ctx context.Context, sessionID string) (*entity.CountSession, error) {
	session, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}
