package inventory

import (
	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/pkg/taxid"
)

func toIndicatorDTOs(items []entity.CatalogItem, indicators []entity.StockIndicator) []dto.StockIndicatorDTO {
	byID := make(map[string]entity.CatalogItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]dto.StockIndicatorDTO, 0, len(indicators))
	for _, ind := range indicators {
		it := byID[ind.ItemID]
		out = append(out, dto.StockIndicatorDTO{
			ItemID:              ind.ItemID,
			Code:                it.Code,
			Description:         it.Description,
			CurrentStock:        ind.CurrentStock,
			MinStock:            ind.MinStock,
			MaxStock:            ind.MaxStock,
			AvgDailyConsumption: ind.AvgDailyConsumption,
			DaysUntilStockout:   ind.DaysUntilStockout,
			TurnoverRate:        ind.TurnoverRate,
			Status:              string(ind.Status),
			ReorderSuggestion:   ind.ReorderSuggestion,
		})
	}
	return out
}

func toCountEntryDTO(e entity.CountEntry) dto.CountEntryDTO {
	return dto.CountEntryDTO{
		ItemID:      e.ItemID,
		SystemQty:   e.SystemQty,
		PhysicalQty: e.PhysicalQty,
		Difference:  e.Difference(),
		Status:      string(e.Status()),
		CountedAt:   e.CountedAt,
		Adjusted:    e.Adjusted,
	}
}

func toCountProgressDTO(s *entity.CountSession) dto.CountProgressDTO {
	p := s.Progress()
	return dto.CountProgressDTO{
		SessionID:       s.ID,
		Status:          string(s.Status),
		TotalInScope:    p.TotalInScope,
		CountedCount:    p.CountedCount,
		PendingCount:    p.PendingCount,
		DivergenceCount: p.DivergenceCount,
		Progress:        p.Ratio,
	}
}

func toCountSessionDTO(s *entity.CountSession) *dto.CountSessionDTO {
	entries := s.Entries()
	out := &dto.CountSessionDTO{
		ID:          s.ID,
		Scope:       s.Scope.String(),
		CategoryID:  s.Scope.CategoryID,
		Responsible: s.Responsible,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Progress:    toCountProgressDTO(s),
		Entries:     make([]dto.CountEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toCountEntryDTO(e))
	}
	return out
}

func toCountSummaryDTO(sum entity.CountSummary) dto.CountSummaryDTO {
	return dto.CountSummaryDTO{
		SessionID:       sum.SessionID,
		Status:          string(sum.Status),
		TotalItems:      sum.TotalItems,
		CountedItems:    sum.CountedItems,
		DivergenceCount: sum.DivergenceCount,
		Adjustments:     sum.Adjustments,
	}
}

func toAdjustmentReportDTO(r AdjustmentReport) dto.AdjustmentReportDTO {
	out := dto.AdjustmentReportDTO{
		Mode:      "fail_open",
		Attempted: r.Attempted,
		Succeeded: make([]dto.AdjustmentItemDTO, 0, len(r.Succeeded)),
		Failed:    make([]dto.AdjustmentFailureDTO, 0, len(r.Failed)),
	}
	if r.Atomic {
		out.Mode = "atomic"
	}
	for _, s := range r.Succeeded {
		out.Succeeded = append(out.Succeeded, dto.AdjustmentItemDTO{ItemID: s.ItemID, PreviousQty: s.PreviousQty, NewQty: s.NewQty})
	}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, dto.AdjustmentFailureDTO{ItemID: f.ItemID, Error: f.Err.Error()})
	}
	return out
}

func toPurchaseOrderDTO(o *entity.PurchaseOrder) *dto.PurchaseOrderDTO {
	out := &dto.PurchaseOrderDTO{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     string(o.Status),
		Lines:      make([]dto.OrderLineDTO, 0, len(o.Lines)),
		Total:      o.Total,
		Notes:      o.Notes,
		CreatedBy:  o.CreatedBy,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		SentAt:     o.SentAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineDTO{
			ItemID:      l.ItemID,
			Description: l.Description,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	return out
}

func toSupplierDTO(s *entity.Supplier) dto.SupplierDTO {
	return dto.SupplierDTO{
		ID:      s.ID,
		Name:    s.Name,
		TaxID:   taxid.Format(s.TaxID),
		Email:   s.Email,
		Phone:   s.Phone,
		Contact: s.Contact,
	}
}
