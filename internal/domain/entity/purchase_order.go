package entity

import "github.com/shopspring/decimal"

// PurchaseOrderReceipt recepción de una orden de compra. El ciclo de vida de la orden vive fuera
// de este servicio; aquí solo se consume su recepción como entradas al ledger.
type PurchaseOrderReceipt struct {
	PurchaseOrderID string
	SupplierID      string
	WarehouseID     string
	ReceivedBy      string
	Lines           []PurchaseOrderReceiptLine
}

// PurchaseOrderReceiptLine línea recibida.
type PurchaseOrderReceiptLine struct {
	ProductID string
	Quantity  int
	UnitCost  decimal.Decimal
}
