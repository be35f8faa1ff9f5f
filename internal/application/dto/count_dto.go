package dto

import (
	"encoding/json"
	"time"
)

// StartCountRequest body para POST /api/stock/counts. CategoryID vacío = todo el catálogo.
// Responsible vacío toma el usuario del token.
type StartCountRequest struct {
	CategoryID  string `json:"category_id,omitempty" validate:"omitempty,max=64"`
	Responsible string `json:"responsible,omitempty" validate:"omitempty,max=120"`
}

// RecordCountRequest body para PUT /api/stock/counts/:id/items/:item_id.
// physical_qty es obligatorio; null explícito limpia el conteo (vuelve a pendiente).
type RecordCountRequest struct {
	PhysicalQty OptionalQty `json:"physical_qty"`
}

// OptionalQty distingue la clave ausente (Set=false) de un null explícito (Set=true, Value=nil).
type OptionalQty struct {
	Set   bool
	Value *int
}

// NewQty construye una cantidad presente.
func NewQty(v int) OptionalQty { return OptionalQty{Set: true, Value: &v} }

// UnmarshalJSON solo se invoca cuando la clave viene en el body, incluso con null.
func (q *OptionalQty) UnmarshalJSON(b []byte) error {
	q.Set = true
	q.Value = nil
	if string(b) == "null" {
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	q.Value = &v
	return nil
}

// MarshalJSON serializa Value; ausente y null salen como null.
func (q OptionalQty) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Value)
}

// CountInput conteo de un ítem importado desde planilla.
type CountInput struct {
	ItemID      string `json:"item_id"`
	PhysicalQty int    `json:"physical_qty"`
}

// RetryAdjustmentsRequest body para POST /api/stock/counts/:id/adjustments/retry.
// ItemIDs vacío reintenta todos los ajustes pendientes.
type RetryAdjustmentsRequest struct {
	ItemIDs []string `json:"item_ids,omitempty"`
}

// CountEntryDTO línea de conteo.
type CountEntryDTO struct {
	ItemID      string     `json:"item_id"`
	SystemQty   int        `json:"system_qty"`
	PhysicalQty *int       `json:"physical_qty"`
	Difference  *int       `json:"difference"`
	Status      string     `json:"status"` // pending | ok | divergent
	CountedAt   *time.Time `json:"counted_at,omitempty"`
	Adjusted    bool       `json:"adjusted"`
}

// CountProgressDTO avance de una sesión (apto para polling).
type CountProgressDTO struct {
	SessionID       string  `json:"session_id"`
	Status          string  `json:"status"`
	TotalInScope    int     `json:"total_in_scope"`
	CountedCount    int     `json:"counted_count"`
	PendingCount    int     `json:"pending_count"`
	DivergenceCount int     `json:"divergence_count"`
	Progress        float64 `json:"progress"` // 0..1
}

// CountSessionDTO sesión de conteo con sus líneas tocadas.
type CountSessionDTO struct {
	ID          string           `json:"id"`
	Scope       string           `json:"scope"` // ALL | category:<id>
	CategoryID  string           `json:"category_id,omitempty"`
	Responsible string           `json:"responsible"`
	Status      string           `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
	Progress    CountProgressDTO `json:"progress"`
	Entries     []CountEntryDTO  `json:"entries"`
}

// CountSummaryDTO resumen de cierre de sesión.
type CountSummaryDTO struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	TotalItems      int    `json:"total_items"`
	CountedItems    int    `json:"counted_items"`
	DivergenceCount int    `json:"divergence_count"`
	Adjustments     int    `json:"adjustments"`
}

// AdjustmentItemDTO resultado de un ajuste escrito.
type AdjustmentItemDTO struct {
	ItemID      string `json:"item_id"`
	PreviousQty int    `json:"previous_qty"`
	NewQty      int    `json:"new_qty"`
}

// AdjustmentFailureDTO ajuste que no se pudo escribir (reintentable).
type AdjustmentFailureDTO struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// AdjustmentReportDTO reporte de aplicación de ajustes.
type AdjustmentReportDTO struct {
	Mode      string                 `json:"mode"` // fail_open | atomic
	Attempted int                    `json:"attempted"`
	Succeeded []AdjustmentItemDTO    `json:"succeeded"`
	Failed    []AdjustmentFailureDTO `json:"failed"`
}

// FinishCountResponse respuesta de POST /api/stock/counts/:id/finish.
type FinishCountResponse struct {
	Summary          CountSummaryDTO     `json:"summary"`
	AdjustmentReport AdjustmentReportDTO `json:"adjustment_report"`
}
