package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func qty(v int) *int { return &v }

type countEnv struct {
	uc       *CountUseCase
	catalog  *fakeCatalog
	sessions *fakeSessions
	cache    *fakeCache
	tx       *fakeTx
}

func newCountEnv(t *testing.T, opts CountOptions, atomic bool, items ...entity.CatalogItem) *countEnv {
	t.Helper()
	catalog := newFakeCatalog(items...)
	sessions := newFakeSessions()
	cache := newFakeCache()
	tx := &fakeTx{catalog: catalog}
	applier := NewAdjustmentApplier(catalog, tx, atomic, zerolog.Nop())
	uc := NewCountUseCase(sessions, catalog, applier, cache, opts, zerolog.Nop())
	uc.SetClock(func() time.Time { return fixedNow })
	return &countEnv{uc: uc, catalog: catalog, sessions: sessions, cache: cache, tx: tx}
}

func (e *countEnv) start(t *testing.T, categoryID string) string {
	t.Helper()
	s, err := e.uc.StartCount(context.Background(), dto.StartCountRequest{CategoryID: categoryID}, "Maria")
	require.NoError(t, err)
	return s.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestFinishCount_AjustaDivergencia(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C", Quantity: 50})
	ctx := context.Background()
	id := env.start(t, "")

	entry, err := env.uc.RecordCount(ctx, id, "C", qty(45))
	require.NoError(t, err)
	assert.Equal(t, -5, *entry.Difference)
	assert.Equal(t, "divergent", entry.Status)

	res, err := env.uc.FinishCount(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 45, env.catalog.quantity("C"))
	assert.Equal(t, "COMPLETED", res.Summary.Status)
	assert.Equal(t, 1, res.Summary.Adjustments)
	assert.Equal(t, 1, res.Summary.DivergenceCount)
	require.Len(t, res.AdjustmentReport.Succeeded, 1)
	assert.Equal(t, dto.AdjustmentItemDTO{ItemID: "C", PreviousQty: 50, NewQty: 45}, res.AdjustmentReport.Succeeded[0])
	assert.Equal(t, "fail_open", res.AdjustmentReport.Mode)
	assert.Equal(t, 1, env.cache.bumps, "los indicadores se invalidan tras ajustar")

	got, err := env.uc.GetSession(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.True(t, got.Entries[0].Adjusted)
}

func TestFinishCount_PersisteCompletedAntesDeEscribir(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C", Quantity: 50})
	id := env.start(t, "")
	_, err := env.uc.RecordCount(context.Background(), id, "C", qty(40))
	require.NoError(t, err)

	var seen entity.CountStatus
	env.catalog.onWrite = func(string) { seen = env.sessions.status(id) }

	_, err = env.uc.FinishCount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.CountStatusCompleted, seen)
}

func TestFinishCount_SinDivergenciasNoEscribe(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false,
		entity.CatalogItem{ID: "a", Quantity: 5},
		entity.CatalogItem{ID: "b", Quantity: 7},
	)
	ctx := context.Background()
	id := env.start(t, "")
	_, err := env.uc.RecordCount(ctx, id, "a", qty(5))
	require.NoError(t, err)

	res, err := env.uc.FinishCount(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, env.catalog.writes)
	assert.Zero(t, res.Summary.Adjustments)
	assert.Equal(t, 1, res.Summary.CountedItems)
	assert.Equal(t, 2, res.Summary.TotalItems)
	assert.Zero(t, env.cache.bumps)
}

// Tres divergencias y una escritura que falla: la sesión cierra igual y el reporte lo indica.
func TestFinishCount_FallaParcial(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false,
		entity.CatalogItem{ID: "a", Quantity: 10},
		entity.CatalogItem{ID: "b", Quantity: 20},
		entity.CatalogItem{ID: "c", Quantity: 30},
	)
	ctx := context.Background()
	id := env.start(t, "")
	for itemID, q := range map[string]int{"a": 11, "b": 19, "c": 0} {
		_, err := env.uc.RecordCount(ctx, id, itemID, qty(q))
		require.NoError(t, err)
	}
	env.catalog.failOn["b"] = errDBDown

	res, err := env.uc.FinishCount(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", res.Summary.Status)
	assert.Equal(t, 3, res.AdjustmentReport.Attempted)
	assert.Len(t, res.AdjustmentReport.Succeeded, 2)
	require.Len(t, res.AdjustmentReport.Failed, 1)
	assert.Equal(t, "b", res.AdjustmentReport.Failed[0].ItemID)
	assert.Equal(t, 2, res.Summary.Adjustments)
	assert.Equal(t, 11, env.catalog.quantity("a"))
	assert.Equal(t, 20, env.catalog.quantity("b"))
	assert.Equal(t, 0, env.catalog.quantity("c"))

	// el operador reintenta el ítem fallido
	delete(env.catalog.failOn, "b")
	retry, err := env.uc.RetryAdjustments(ctx, id, []string{"b"})
	require.NoError(t, err)
	assert.Len(t, retry.Succeeded, 1)
	assert.Empty(t, retry.Failed)
	assert.Equal(t, 19, env.catalog.quantity("b"))

	again, err := env.uc.RetryAdjustments(ctx, id, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Attempted, "nada pendiente")

	_, err = env.uc.RetryAdjustments(ctx, id, []string{"a"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "a ya fue ajustado")
}

func TestFinishCount_ModoAtomicoRevierte(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, true,
		entity.CatalogItem{ID: "a", Quantity: 10},
		entity.CatalogItem{ID: "b", Quantity: 20},
	)
	ctx := context.Background()
	id := env.start(t, "")
	_, _ = env.uc.RecordCount(ctx, id, "a", qty(1))
	_, _ = env.uc.RecordCount(ctx, id, "b", qty(2))
	env.catalog.failOn["b"] = errDBDown

	res, err := env.uc.FinishCount(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "atomic", res.AdjustmentReport.Mode)
	assert.Empty(t, res.AdjustmentReport.Succeeded)
	require.Len(t, res.AdjustmentReport.Failed, 2)
	assert.Equal(t, ErrAdjustmentRolledBack.Error(), res.AdjustmentReport.Failed[0].Error)
	assert.Contains(t, res.AdjustmentReport.Failed[1].Error, errDBDown.Error())
	assert.Equal(t, 10, env.catalog.quantity("a"), "la escritura de a se revirtió")
	assert.Equal(t, 1, env.tx.runs)
	assert.Zero(t, env.cache.bumps)

	delete(env.catalog.failOn, "b")
	retry, err := env.uc.RetryAdjustments(ctx, id, nil)
	require.NoError(t, err)
	assert.Len(t, retry.Succeeded, 2)
	assert.Equal(t, 1, env.catalog.quantity("a"))
	assert.Equal(t, 2, env.catalog.quantity("b"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación y estados
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelCount_NoTocaElCatalogo(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C", Quantity: 50})
	ctx := context.Background()
	id := env.start(t, "")
	_, err := env.uc.RecordCount(ctx, id, "C", qty(1))
	require.NoError(t, err)

	sum, err := env.uc.CancelCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", sum.Status)
	assert.Zero(t, sum.Adjustments)
	assert.Equal(t, 50, env.catalog.quantity("C"))
	assert.Empty(t, env.catalog.writes)

	_, err = env.uc.FinishCount(ctx, id)
	var serr *domain.InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "CANCELLED", serr.State)

	_, err = env.uc.RetryAdjustments(ctx, id, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestRecordCount_Errores(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C", Quantity: 50})
	ctx := context.Background()

	_, err := env.uc.RecordCount(ctx, "no-existe", "C", qty(1))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	id := env.start(t, "")
	_, err = env.uc.RecordCount(ctx, id, "Z", qty(1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = env.uc.FinishCount(ctx, id)
	require.NoError(t, err)
	_, err = env.uc.RecordCount(ctx, id, "C", qty(1))
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestStartCount_ResponsableDelToken(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C"})
	s, err := env.uc.StartCount(context.Background(), dto.StartCountRequest{}, "joao@almox")
	require.NoError(t, err)
	assert.Equal(t, "joao@almox", s.Responsible)
	assert.Equal(t, "ALL", s.Scope)

	fresh := newCountEnv(t, CountOptions{}, false, entity.CatalogItem{ID: "C", CategoryID: "x"})
	_, err = fresh.uc.StartCount(context.Background(), dto.StartCountRequest{CategoryID: "x"}, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "responsible", verr.Field)
}

func TestStartCount_AlcancesSolapados(t *testing.T) {
	items := []entity.CatalogItem{
		{ID: "luva", CategoryID: "epi"},
		{ID: "broca", CategoryID: "ferramentas"},
	}
	env := newCountEnv(t, CountOptions{}, false, items...)
	ctx := context.Background()

	epi := env.start(t, "epi")
	_, err := env.uc.StartCount(ctx, dto.StartCountRequest{CategoryID: "epi"}, "Maria")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	_, err = env.uc.StartCount(ctx, dto.StartCountRequest{}, "Maria")
	assert.True(t, errors.Is(err, domain.ErrConflict), "ALL se solapa con cualquier categoría")

	env.start(t, "ferramentas")

	_, err = env.uc.CancelCount(ctx, epi)
	require.NoError(t, err)
	env.start(t, "epi")

	permissive := newCountEnv(t, CountOptions{AllowOverlapping: true}, false, items...)
	permissive.start(t, "")
	permissive.start(t, "epi")
}

func TestProgress_YListado(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false,
		entity.CatalogItem{ID: "a", Quantity: 1},
		entity.CatalogItem{ID: "b", Quantity: 2},
	)
	ctx := context.Background()
	id := env.start(t, "")
	_, _ = env.uc.RecordCount(ctx, id, "a", qty(3))

	p, err := env.uc.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dto.CountProgressDTO{
		SessionID: id, Status: "ACTIVE",
		TotalInScope: 2, CountedCount: 1, PendingCount: 1, DivergenceCount: 1, Progress: 0.5,
	}, *p)

	active, err := env.uc.ListSessions(ctx, true, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = env.uc.FinishCount(ctx, id)
	require.NoError(t, err)
	active, err = env.uc.ListSessions(ctx, true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, active)

	p, err = env.uc.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", p.Status, "el progreso se puede consultar en cualquier estado")
}

func TestAdjustmentApplier_SoloSesionesCompletadas(t *testing.T) {
	catalog := newFakeCatalog(entity.CatalogItem{ID: "C", Quantity: 50})
	applier := NewAdjustmentApplier(catalog, nil, true, zerolog.Nop())
	assert.False(t, applier.Atomic(), "sin TxRunner no hay modo atómico")

	s, err := entity.NewCountSession("s", entity.ScopeAll(), "Maria", catalog.items, fixedNow)
	require.NoError(t, err)
	_, _ = s.RecordCount("C", qty(1), fixedNow)

	_, err = applier.Apply(context.Background(), s, s.Divergences())
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, 50, catalog.quantity("C"))
}

func TestAdjustmentApplier_IgnoraCancelacionDelContexto(t *testing.T) {
	catalog := newFakeCatalog(entity.CatalogItem{ID: "C", Quantity: 50})
	applier := NewAdjustmentApplier(catalog, nil, false, zerolog.Nop())
	s, err := entity.NewCountSession("s", entity.ScopeAll(), "Maria", catalog.items, fixedNow)
	require.NoError(t, err)
	_, _ = s.RecordCount("C", qty(48), fixedNow)
	div, err := s.Finish(fixedNow)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := applier.Apply(ctx, s, div)
	require.NoError(t, err)
	assert.Len(t, report.Succeeded, 1)
	assert.Empty(t, report.FailedItemIDs())
}

func TestImportCounts_TodoONada(t *testing.T) {
	env := newCountEnv(t, CountOptions{}, false,
		entity.CatalogItem{ID: "a", Quantity: 1},
		entity.CatalogItem{ID: "b", Quantity: 2},
	)
	ctx := context.Background()
	id := env.start(t, "")

	_, err := env.uc.ImportCounts(ctx, id, []dto.CountInput{{ItemID: "a", PhysicalQty: 1}, {ItemID: "zzz", PhysicalQty: 4}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	p, err := env.uc.Progress(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, p.CountedCount, "una línea inválida descarta la planilla completa")

	p, err = env.uc.ImportCounts(ctx, id, []dto.CountInput{{ItemID: "a", PhysicalQty: 1}, {ItemID: "b", PhysicalQty: 5}})
	require.NoError(t, err)
	assert.Equal(t, 2, p.CountedCount)
	assert.Equal(t, 1, p.DivergenceCount)

	session, items, err := env.uc.CountSheet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, session.ID)
	assert.Len(t, items, 2)
}
