package entity

import "time"

// Umbrales por defecto cuando el ítem no los define.
const (
	DefaultMinQuantity = 10
	DefaultMaxQuantity = 1000
)

// CatalogItem representa un material del almoxarifado (incluye EPIs).
// Quantity es el stock contable; solo lo modifican los movimientos o un ajuste de conteo.
type CatalogItem struct {
	ID          string
	Code        string // código interno o de barras
	Description string
	Unit        string // UN, CX, PAR, KG...
	CategoryID  string
	Quantity    int
	MinQuantity *int // nil = DefaultMinQuantity
	MaxQuantity *int // nil = DefaultMaxQuantity
	IsEPI       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// MinStock devuelve el mínimo efectivo del ítem.
func (i CatalogItem) MinStock() int {
	if i.MinQuantity != nil {
		return *i.MinQuantity
	}
	return DefaultMinQuantity
}

// MaxStock devuelve el máximo efectivo del ítem.
func (i CatalogItem) MaxStock() int {
	if i.MaxQuantity != nil {
		return *i.MaxQuantity
	}
	return DefaultMaxQuantity
}
