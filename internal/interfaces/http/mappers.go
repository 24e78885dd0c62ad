package http

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toItemResponse(i *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:             i.ID,
		ProductID:      i.ProductID,
		WarehouseID:    i.WarehouseID,
		QuantityOnHand: i.QuantityOnHand,
		ReorderLevel:   i.ReorderLevel,
		AverageCost:    i.AverageCost,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func toAvailabilityResponse(a *inventory.Availability) dto.AvailabilityResponse {
	return dto.AvailabilityResponse{
		InventoryItemID: a.InventoryItemID,
		ProductID:       a.ProductID,
		WarehouseID:     a.WarehouseID,
		QuantityOnHand:  a.QuantityOnHand,
		Reserved:        a.Reserved,
		Available:       a.Available,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		ProductID:       m.ProductID,
		WarehouseID:     m.WarehouseID,
		Type:            string(m.Type),
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		BalanceAfter:    m.BalanceAfter,
		Reason:          m.Reason,
		ReferenceID:     m.ReferenceID,
		ReferenceType:   m.ReferenceType,
		MovementDate:    m.MovementDate,
		PerformedBy:     m.PerformedBy,
		Notes:           m.Notes,
	}
}

func toMovementList(list []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toReservationResponse(r *entity.StockReservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:              r.ID,
		InventoryItemID: r.InventoryItemID,
		ProductID:       r.ProductID,
		WarehouseID:     r.WarehouseID,
		Quantity:        r.Quantity,
		ReferenceID:     r.ReferenceID,
		ReferenceType:   r.ReferenceType,
		Status:          string(r.Status),
		ReservedAt:      r.ReservedAt,
		ExpiresAt:       r.ExpiresAt,
		ReleasedAt:      r.ReleasedAt,
		FulfilledAt:     r.FulfilledAt,
		ExpiredAt:       r.ExpiredAt,
		ReleaseReason:   r.ReleaseReason,
		Notes:           r.Notes,
	}
}

func toAdjustmentResponse(a *entity.StockAdjustment) dto.AdjustmentResponse {
	items := make([]dto.AdjustmentLineResponse, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, dto.AdjustmentLineResponse{
			ID:               it.ID,
			InventoryItemID:  it.InventoryItemID,
			ProductID:        it.ProductID,
			QuantityBefore:   it.QuantityBefore,
			QuantityAdjusted: it.QuantityAdjusted,
			QuantityAfter:    it.QuantityAfter,
		})
	}
	return dto.AdjustmentResponse{
		ID:               a.ID,
		AdjustmentNumber: a.AdjustmentNumber,
		WarehouseID:      a.WarehouseID,
		Type:             string(a.Type),
		Status:           string(a.Status()),
		Reason:           a.Reason,
		AdjustedBy:       a.AdjustedBy,
		IsApproved:       a.IsApproved,
		IsActive:         a.IsActive,
		ApprovedBy:       a.ApprovedBy,
		ApprovedAt:       a.ApprovedAt,
		RejectedBy:       a.RejectedBy,
		RejectedAt:       a.RejectedAt,
		CreatedAt:        a.CreatedAt,
		Items:            items,
	}
}

func toTransferResponse(t *entity.StockTransfer) dto.TransferResponse {
	items := make([]dto.TransferLineResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferLineResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto.TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          string(t.Status),
		RequestedBy:     t.RequestedBy,
		ApprovedBy:      t.ApprovedBy,
		ShippedBy:       t.ShippedBy,
		ReceivedBy:      t.ReceivedBy,
		CancelledBy:     t.CancelledBy,
		Notes:           t.Notes,
		RequestedAt:     t.RequestedAt,
		ApprovedAt:      t.ApprovedAt,
		ShippedAt:       t.ShippedAt,
		ReceivedAt:      t.ReceivedAt,
		CancelledAt:     t.CancelledAt,
		Items:           items,
	}
}
