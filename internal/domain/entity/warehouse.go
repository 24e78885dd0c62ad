package entity

import "time"

// Warehouse bodega donde se almacena inventario. Solo se valida su existencia en traslados y ajustes.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
