package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

// CountStatus estado de una sesión de inventario cíclico.
// ACTIVE es el único estado que admite cambios; COMPLETED y CANCELLED son terminales.
type CountStatus string

const (
	CountStatusActive    CountStatus = "ACTIVE"
	CountStatusCompleted CountStatus = "COMPLETED"
	CountStatusCancelled CountStatus = "CANCELLED"
)

// EntryStatus estado derivado de una línea de conteo.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryOK        EntryStatus = "ok"
	EntryDivergent EntryStatus = "divergent"
)

// CountScope alcance de la sesión: todo el catálogo (CategoryID vacío) o una categoría.
type CountScope struct {
	CategoryID string
}

// ScopeAll alcance sobre todos los ítems.
func ScopeAll() CountScope { return CountScope{} }

// ScopeCategory alcance sobre una categoría.
func ScopeCategory(categoryID string) CountScope { return CountScope{CategoryID: categoryID} }

// IsAll indica si el alcance es el catálogo completo.
func (s CountScope) IsAll() bool { return s.CategoryID == "" }

// Overlaps indica si dos alcances comparten ítems: ALL se solapa con todo.
func (s CountScope) Overlaps(other CountScope) bool {
	return s.IsAll() || other.IsAll() || s.CategoryID == other.CategoryID
}

func (s CountScope) String() string {
	if s.IsAll() {
		return "ALL"
	}
	return "category:" + s.CategoryID
}

// CountEntry línea de conteo de un ítem. SystemQty es la cantidad contable congelada al abrir la
// sesión; PhysicalQty nil significa "todavía no contado".
type CountEntry struct {
	ItemID      string
	SystemQty   int
	PhysicalQty *int
	CountedAt   *time.Time
	Adjusted    bool // el ajuste ya se escribió en el catálogo
}

// Difference devuelve PhysicalQty - SystemQty, o nil si no hay conteo.
func (e CountEntry) Difference() *int {
	if e.PhysicalQty == nil {
		return nil
	}
	d := *e.PhysicalQty - e.SystemQty
	return &d
}

// Status deriva el estado de la línea a partir de la diferencia.
func (e CountEntry) Status() EntryStatus {
	d := e.Difference()
	switch {
	case d == nil:
		return EntryPending
	case *d == 0:
		return EntryOK
	default:
		return EntryDivergent
	}
}

// CountProgress avance de la sesión; derivación pura sobre las líneas actuales.
type CountProgress struct {
	TotalInScope    int
	CountedCount    int
	PendingCount    int
	DivergenceCount int
	Ratio           float64 // CountedCount / TotalInScope (0 si el alcance está vacío)
}

// CountSummary resumen emitido al cerrar una sesión (finish o cancel).
type CountSummary struct {
	SessionID       string
	Status          CountStatus
	TotalItems      int
	CountedItems    int
	DivergenceCount int
	Adjustments     int
}

// CountSession sesión de conteo físico contra una línea base congelada.
type CountSession struct {
	ID          string
	Scope       CountScope
	Responsible string
	Status      CountStatus
	StartedAt   time.Time
	FinishedAt  *time.Time

	baseline   map[string]int // itemID → SystemQty, congelado en el arranque
	itemOrder  []string
	entries    map[string]*CountEntry // solo ítems tocados durante la sesión
	entryOrder []string
}

// NewCountSession abre una sesión ACTIVE y congela la cantidad contable de cada ítem del alcance.
func NewCountSession(id string, scope CountScope, responsible string, items []CatalogItem, now time.Time) (*CountSession, error) {
	responsible = strings.TrimSpace(responsible)
	if responsible == "" {
		return nil, domain.NewValidationError("responsible", "el responsable es obligatorio")
	}
	if !scope.IsAll() && len(items) == 0 {
		return nil, domain.NewValidationError("scope", "la categoría "+scope.CategoryID+" no tiene ítems")
	}
	s := &CountSession{
		ID:          id,
		Scope:       scope,
		Responsible: responsible,
		Status:      CountStatusActive,
		StartedAt:   now,
		baseline:    make(map[string]int, len(items)),
		itemOrder:   make([]string, 0, len(items)),
		entries:     make(map[string]*CountEntry),
	}
	for _, it := range items {
		if _, dup := s.baseline[it.ID]; dup {
			continue
		}
		s.baseline[it.ID] = it.Quantity
		s.itemOrder = append(s.itemOrder, it.ID)
	}
	return s, nil
}

// RestoreCountSession reconstruye una sesión persistida. baseline debe venir en el orden original
// y entries en orden de inserción.
func RestoreCountSession(id string, scope CountScope, responsible string, status CountStatus,
	startedAt time.Time, finishedAt *time.Time, baseline []CountEntry, touched []string) *CountSession {
	s := &CountSession{
		ID:          id,
		Scope:       scope,
		Responsible: responsible,
		Status:      status,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		baseline:    make(map[string]int, len(baseline)),
		itemOrder:   make([]string, 0, len(baseline)),
		entries:     make(map[string]*CountEntry),
	}
	byID := make(map[string]CountEntry, len(baseline))
	for _, b := range baseline {
		s.baseline[b.ItemID] = b.SystemQty
		s.itemOrder = append(s.itemOrder, b.ItemID)
		byID[b.ItemID] = b
	}
	for _, itemID := range touched {
		if e, ok := byID[itemID]; ok {
			e := e
			s.entries[itemID] = &e
			s.entryOrder = append(s.entryOrder, itemID)
		}
	}
	return s
}

// InScope indica si el ítem pertenece a la línea base de la sesión.
func (s *CountSession) InScope(itemID string) bool {
	_, ok := s.baseline[itemID]
	return ok
}

// SystemQty devuelve la cantidad contable congelada de un ítem del alcance.
func (s *CountSession) SystemQty(itemID string) (int, bool) {
	q, ok := s.baseline[itemID]
	return q, ok
}

// ItemIDs devuelve los ítems del alcance en el orden de la línea base.
func (s *CountSession) ItemIDs() []string {
	out := make([]string, len(s.itemOrder))
	copy(out, s.itemOrder)
	return out
}

// RecordCount registra (o sobrescribe) el conteo físico de un ítem. physicalQty nil limpia el
// conteo y devuelve la línea a "pendiente"; la línea sigue existiendo.
func (s *CountSession) RecordCount(itemID string, physicalQty *int, now time.Time) (CountEntry, error) {
	if s.Status != CountStatusActive {
		return CountEntry{}, domain.NewInvalidStateError("count_session", "recordCount", string(s.Status))
	}
	systemQty, ok := s.baseline[itemID]
	if !ok {
		return CountEntry{}, domain.NewValidationError("item_id", "el ítem "+itemID+" no pertenece al alcance de la sesión")
	}
	if physicalQty != nil && *physicalQty < 0 {
		return CountEntry{}, domain.NewValidationError("physical_qty", "el conteo no puede ser negativo")
	}

	e, exists := s.entries[itemID]
	if !exists {
		e = &CountEntry{ItemID: itemID, SystemQty: systemQty}
		s.entries[itemID] = e
		s.entryOrder = append(s.entryOrder, itemID)
	}
	if physicalQty == nil {
		e.PhysicalQty = nil
		e.CountedAt = nil
	} else {
		q := *physicalQty
		t := now
		e.PhysicalQty = &q
		e.CountedAt = &t
	}
	return *e, nil
}

// Entry devuelve la línea de un ítem tocado.
func (s *CountSession) Entry(itemID string) (CountEntry, bool) {
	e, ok := s.entries[itemID]
	if !ok {
		return CountEntry{}, false
	}
	return *e, true
}

// Entries devuelve las líneas tocadas en orden de inserción.
func (s *CountSession) Entries() []CountEntry {
	out := make([]CountEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		out = append(out, *s.entries[id])
	}
	return out
}

// Lines devuelve una línea por ítem del alcance (las no tocadas como pendientes), en el orden
// de la línea base. Útil para planillas y persistencia.
func (s *CountSession) Lines() []CountEntry {
	out := make([]CountEntry, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		if e, ok := s.entries[id]; ok {
			out = append(out, *e)
			continue
		}
		out = append(out, CountEntry{ItemID: id, SystemQty: s.baseline[id]})
	}
	return out
}

// TouchedItemIDs devuelve los ítems con línea, en orden de inserción.
func (s *CountSession) TouchedItemIDs() []string {
	out := make([]string, len(s.entryOrder))
	copy(out, s.entryOrder)
	return out
}

// Divergences devuelve las líneas contadas con diferencia distinta de cero.
func (s *CountSession) Divergences() []CountEntry {
	var out []CountEntry
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if e.Status() == EntryDivergent {
			out = append(out, *e)
		}
	}
	return out
}

// Progress calcula el avance actual; se puede invocar en cualquier estado.
func (s *CountSession) Progress() CountProgress {
	p := CountProgress{TotalInScope: len(s.itemOrder)}
	for _, id := range s.entryOrder {
		switch s.entries[id].Status() {
		case EntryOK:
			p.CountedCount++
		case EntryDivergent:
			p.CountedCount++
			p.DivergenceCount++
		}
	}
	p.PendingCount = p.TotalInScope - p.CountedCount
	if p.TotalInScope > 0 {
		p.Ratio = float64(p.CountedCount) / float64(p.TotalInScope)
	}
	return p
}

// Finish pasa la sesión a COMPLETED y devuelve las divergencias que deben ajustarse.
func (s *CountSession) Finish(now time.Time) ([]CountEntry, error) {
	if s.Status != CountStatusActive {
		return nil, domain.NewInvalidStateError("count_session", "finish", string(s.Status))
	}
	divergences := s.Divergences()
	s.Status = CountStatusCompleted
	s.FinishedAt = &now
	return divergences, nil
}

// Cancel pasa la sesión a CANCELLED. Nunca produce ajustes.
func (s *CountSession) Cancel(now time.Time) error {
	if s.Status != CountStatusActive {
		return domain.NewInvalidStateError("count_session", "cancel", string(s.Status))
	}
	s.Status = CountStatusCancelled
	s.FinishedAt = &now
	return nil
}

// MarkAdjusted marca como escrito el ajuste de un ítem. Solo aplica en sesiones COMPLETED.
func (s *CountSession) MarkAdjusted(itemID string) {
	if s.Status != CountStatusCompleted {
		return
	}
	if e, ok := s.entries[itemID]; ok && e.Status() == EntryDivergent {
		e.Adjusted = true
	}
}

// PendingAdjustments devuelve las divergencias de una sesión COMPLETED cuyo ajuste no se escribió.
func (s *CountSession) PendingAdjustments() []CountEntry {
	if s.Status != CountStatusCompleted {
		return nil
	}
	var out []CountEntry
	for _, e := range s.Divergences() {
		if !e.Adjusted {
			out = append(out, e)
		}
	}
	return out
}

// Summary construye el resumen de cierre con el número de ajustes escritos.
func (s *CountSession) Summary(adjustments int) CountSummary {
	p := s.Progress()
	return CountSummary{
		SessionID:       s.ID,
		Status:          s.Status,
		TotalItems:      p.TotalInScope,
		CountedItems:    p.CountedCount,
		DivergenceCount: p.DivergenceCount,
		Adjustments:     adjustments,
	}
}
