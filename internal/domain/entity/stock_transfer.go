package entity

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// TransferStatus estado del traslado entre bodegas.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusApproved  TransferStatus = "APPROVED"
	TransferStatusShipped   TransferStatus = "SHIPPED"
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// StockTransfer traslado en varios pasos: solicitar -> aprobar -> despachar -> recibir.
type StockTransfer struct {
	ID              string
	TransferNumber  string
	FromWarehouseID string
	ToWarehouseID   string
	Status          TransferStatus
	RequestedBy     string
	ApprovedBy      string
	ShippedBy       string
	ReceivedBy      string
	CancelledBy     string
	Notes           string
	RequestedAt     time.Time
	ApprovedAt      *time.Time
	ShippedAt       *time.Time
	ReceivedAt      *time.Time
	CancelledAt     *time.Time
	Items           []StockTransferItem
	Version         int64
}

// StockTransferItem línea del traslado.
type StockTransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   int
}

// Approve Pending -> Approved.
func (t *StockTransfer) Approve(by string, now time.Time) error {
	if err := t.advance(TransferStatusPending, TransferStatusApproved); err != nil {
		return err
	}
	t.ApprovedBy = by
	t.ApprovedAt = &now
	return nil
}

// Ship Approved -> Shipped.
func (t *StockTransfer) Ship(by string, now time.Time) error {
	if err := t.advance(TransferStatusApproved, TransferStatusShipped); err != nil {
		return err
	}
	t.ShippedBy = by
	t.ShippedAt = &now
	return nil
}

// Receive Shipped -> Received (terminal).
func (t *StockTransfer) Receive(by string, now time.Time) error {
	if err := t.advance(TransferStatusShipped, TransferStatusReceived); err != nil {
		return err
	}
	t.ReceivedBy = by
	t.ReceivedAt = &now
	return nil
}

// Cancel lleva a Cancelled desde cualquier estado salvo Received (o ya Cancelled).
func (t *StockTransfer) Cancel(by string, now time.Time) error {
	switch t.Status {
	case TransferStatusReceived:
		return &domain.InvalidOperationError{
			Entity: "traslado", ID: t.ID, Operation: "cancelar", Current: string(t.Status),
		}
	case TransferStatusCancelled:
		return t.transitionError(TransferStatusCancelled)
	}
	t.Status = TransferStatusCancelled
	t.CancelledBy = by
	t.CancelledAt = &now
	return nil
}

// advance exige coincidencia exacta con el estado esperado; nunca promueve en silencio.
func (t *StockTransfer) advance(from, to TransferStatus) error {
	if t.Status != from {
		return t.transitionError(to)
	}
	t.Status = to
	return nil
}

func (t *StockTransfer) transitionError(target TransferStatus) error {
	return &domain.InvalidStateTransitionError{
		Entity:  "traslado",
		ID:      t.ID,
		Current: string(t.Status),
		Target:  string(target),
	}
}
