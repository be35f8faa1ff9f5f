package dto

// CreateSupplierRequest body para POST /api/stock/suppliers.
type CreateSupplierRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=30"`
	Contact string `json:"contact,omitempty" validate:"max=120"`
}

// SupplierDTO proveedor; TaxID con máscara (CNPJ/CPF).
type SupplierDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Contact string `json:"contact,omitempty"`
}
