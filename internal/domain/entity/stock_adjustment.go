package entity

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// AdjustmentType motivo de un ajuste manual.
type AdjustmentType string

const (
	AdjustmentTypeDamage AdjustmentType = "DAMAGE"
	AdjustmentTypeLoss   AdjustmentType = "LOSS"
	AdjustmentTypeFound  AdjustmentType = "FOUND"
	AdjustmentTypeCount  AdjustmentType = "COUNT"
	AdjustmentTypeReturn AdjustmentType = "RETURN"
	AdjustmentTypeExpiry AdjustmentType = "EXPIRY"
)

// Valid indica si el tipo de ajuste es conocido.
func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentTypeDamage, AdjustmentTypeLoss, AdjustmentTypeFound,
		AdjustmentTypeCount, AdjustmentTypeReturn, AdjustmentTypeExpiry:
		return true
	}
	return false
}

// AdjustmentStatus estado derivado (no persistido) del ajuste.
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "PENDING"
	AdjustmentStatusApproved AdjustmentStatus = "APPROVED"
	AdjustmentStatusRejected AdjustmentStatus = "REJECTED"
)

// StockAdjustment lote de correcciones que requiere aprobación antes de afectar el ledger.
type StockAdjustment struct {
	ID               string
	AdjustmentNumber string
	WarehouseID      string
	Type             AdjustmentType
	Reason           string
	AdjustedBy       string
	IsApproved       bool
	IsActive         bool
	ApprovedBy       string
	ApprovedAt       *time.Time
	RejectedBy       string
	RejectedAt       *time.Time
	Items            []StockAdjustmentItem
	CreatedAt        time.Time
	Version          int64
}

// StockAdjustmentItem línea del ajuste. Las cantidades quedan fijas al crear el ajuste.
type StockAdjustmentItem struct {
	ID               string
	AdjustmentID     string
	InventoryItemID  string
	ProductID        string
	QuantityBefore   int
	QuantityAdjusted int
	QuantityAfter    int
}

// NewStockAdjustmentItem construye la línea calculando QuantityAfter.
func NewStockAdjustmentItem(id, inventoryItemID, productID string, before, adjusted int) StockAdjustmentItem {
	return StockAdjustmentItem{
		ID:               id,
		InventoryItemID:  inventoryItemID,
		ProductID:        productID,
		QuantityBefore:   before,
		QuantityAdjusted: adjusted,
		QuantityAfter:    before + adjusted,
	}
}

// Status devuelve el estado derivado.
func (a *StockAdjustment) Status() AdjustmentStatus {
	switch {
	case a.IsApproved:
		return AdjustmentStatusApproved
	case !a.IsActive:
		return AdjustmentStatusRejected
	default:
		return AdjustmentStatusPending
	}
}

// Approve marca el ajuste como aprobado. Solo una vez y solo si sigue activo.
func (a *StockAdjustment) Approve(approvedBy string, now time.Time) error {
	if a.IsApproved {
		return &domain.AlreadyApprovedError{AdjustmentID: a.ID}
	}
	if !a.IsActive {
		return &domain.InvalidStateTransitionError{
			Entity: "ajuste", ID: a.ID,
			Current: string(a.Status()), Target: string(AdjustmentStatusApproved),
		}
	}
	a.IsApproved = true
	a.ApprovedBy = approvedBy
	a.ApprovedAt = &now
	return nil
}

// Reject anula el ajuste sin efecto sobre el ledger.
func (a *StockAdjustment) Reject(rejectedBy string, now time.Time) error {
	if a.IsApproved {
		return &domain.AlreadyApprovedError{AdjustmentID: a.ID}
	}
	if !a.IsActive {
		return &domain.InvalidStateTransitionError{
			Entity: "ajuste", ID: a.ID,
			Current: string(a.Status()), Target: string(AdjustmentStatusRejected),
		}
	}
	a.IsActive = false
	a.RejectedBy = rejectedBy
	a.RejectedAt = &now
	return nil
}
