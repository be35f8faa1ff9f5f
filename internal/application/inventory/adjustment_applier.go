package inventory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

// ErrAdjustmentRolledBack marca los ajustes revertidos porque otra escritura del mismo lote
// atómico falló.
var ErrAdjustmentRolledBack = errors.New("ajuste revertido: otra escritura del lote falló")

// AdjustmentResult ajuste escrito: la cantidad contable pasó de PreviousQty a NewQty.
type AdjustmentResult struct {
	ItemID      string
	PreviousQty int
	NewQty      int
}

// AdjustmentReport resultado por ítem de una aplicación de ajustes.
type AdjustmentReport struct {
	Atomic    bool
	Attempted int
	Succeeded []AdjustmentResult
	Failed    []domain.AdjustmentWriteError
}

// FailedItemIDs devuelve los ítems cuyo ajuste quedó pendiente.
func (r AdjustmentReport) FailedItemIDs() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.ItemID)
	}
	return out
}

// AdjustmentApplier sobrescribe la cantidad contable del catálogo con la cantidad física contada.
//
// Modo por defecto (fail-open): escrituras secuenciales e independientes; una falla se registra en
// el reporte y el resto continúa. Modo atómico: todas las escrituras en una transacción, la primera
// falla revierte el lote completo.
type AdjustmentApplier struct {
	catalog  repository.CatalogRepository
	txRunner TxRunner
	atomic   bool
	log      zerolog.Logger
}

// NewAdjustmentApplier construye el aplicador. txRunner solo es necesario con atomic=true.
func NewAdjustmentApplier(catalog repository.CatalogRepository, txRunner TxRunner, atomic bool, log zerolog.Logger) *AdjustmentApplier {
	return &AdjustmentApplier{catalog: catalog, txRunner: txRunner, atomic: atomic && txRunner != nil, log: log}
}

// Atomic indica el modo efectivo.
func (a *AdjustmentApplier) Atomic() bool { return a.atomic }

// Apply escribe los ajustes de entries (líneas divergentes) de una sesión COMPLETED y marca como
// ajustadas las que se escribieron. Solo devuelve error si la sesión no está COMPLETED; las fallas
// de escritura van en el reporte.
func (a *AdjustmentApplier) Apply(ctx context.Context, session *entity.CountSession, entries []entity.CountEntry) (AdjustmentReport, error) {
	if session.Status != entity.CountStatusCompleted {
		return AdjustmentReport{}, domain.NewInvalidStateError("count_session", "applyAdjustments", string(session.Status))
	}

	targets := make([]entity.CountEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status() == entity.EntryDivergent {
			targets = append(targets, e)
		}
	}
	report := AdjustmentReport{Atomic: a.atomic, Attempted: len(targets)}
	if len(targets) == 0 {
		return report, nil
	}

	// la sesión ya está cerrada: un cliente que corta la conexión no debe dejar el lote a medias
	ctx = context.WithoutCancel(ctx)

	if a.atomic {
		return a.applyAtomic(ctx, session, targets, report), nil
	}

	for _, e := range targets {
		if err := a.catalog.WriteQuantity(ctx, e.ItemID, *e.PhysicalQty); err != nil {
			report.Failed = append(report.Failed, domain.AdjustmentWriteError{ItemID: e.ItemID, Err: err})
			a.log.Warn().Err(err).
				Str("session_id", session.ID).
				Str("item_id", e.ItemID).
				Msg("ajuste de conteo no aplicado")
			continue
		}
		report.Succeeded = append(report.Succeeded, AdjustmentResult{ItemID: e.ItemID, PreviousQty: e.SystemQty, NewQty: *e.PhysicalQty})
		session.MarkAdjusted(e.ItemID)
	}
	return report, nil
}

func (a *AdjustmentApplier) applyAtomic(ctx context.Context, session *entity.CountSession, targets []entity.CountEntry, report AdjustmentReport) AdjustmentReport {
	err := a.txRunner.Run(ctx, func(catalog repository.CatalogRepository) error {
		for _, e := range targets {
			if err := catalog.WriteQuantity(ctx, e.ItemID, *e.PhysicalQty); err != nil {
				return domain.AdjustmentWriteError{ItemID: e.ItemID, Err: err}
			}
		}
		return nil
	})
	if err == nil {
		for _, e := range targets {
			report.Succeeded = append(report.Succeeded, AdjustmentResult{ItemID: e.ItemID, PreviousQty: e.SystemQty, NewQty: *e.PhysicalQty})
			session.MarkAdjusted(e.ItemID)
		}
		return report
	}

	var werr domain.AdjustmentWriteError
	failedID := ""
	if errors.As(err, &werr) {
		failedID = werr.ItemID
	}
	for _, e := range targets {
		if e.ItemID == failedID {
			report.Failed = append(report.Failed, werr)
			continue
		}
		// begin/commit fallidos o ítems revertidos por la falla de otro
		cause := ErrAdjustmentRolledBack
		if failedID == "" {
			cause = err
		}
		report.Failed = append(report.Failed, domain.AdjustmentWriteError{ItemID: e.ItemID, Err: cause})
	}
	a.log.Warn().Err(err).
		Str("session_id", session.ID).
		Int("items", len(targets)).
		Msg("lote atómico de ajustes revertido")
	return report
}
