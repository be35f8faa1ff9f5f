package entity

import "time"

// Supplier proveedor de materiales. TaxID se guarda solo con dígitos (CNPJ o CPF).
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Email     string // destino de los pedidos de compra
	Phone     string
	Contact   string
	CreatedAt time.Time
}
