package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/pkg/taxid"
)

// SupplierUseCase registro de proveedores a los que se envían los pedidos.
type SupplierUseCase struct {
	repo  repository.SupplierRepository
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, log zerolog.Logger) *SupplierUseCase {
	return &SupplierUseCase{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Create registra un proveedor. El CNPJ/CPF se valida y se guarda solo con dígitos; repetirlo
// devuelve domain.ErrDuplicate.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierDTO, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "obligatorio")
	}
	if err := taxid.Validate(in.TaxID); err != nil {
		return nil, domain.NewValidationError("tax_id", err.Error())
	}
	doc := taxid.Normalize(in.TaxID)

	existing, err := uc.repo.GetByTaxID(ctx, doc)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	s := &entity.Supplier{
		ID:        uc.newID(),
		Name:      name,
		TaxID:     doc,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Contact:   strings.TrimSpace(in.Contact),
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("supplier_id", s.ID).Str("tax_id", s.TaxID).Msg("proveedor registrado")
	out := toSupplierDTO(s)
	return &out, nil
}

// Get devuelve un proveedor o domain.ErrNotFound.
func (uc *SupplierUseCase) Get(ctx context.Context, id string) (*dto.SupplierDTO, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	out := toSupplierDTO(s)
	return &out, nil
}

// List lista proveedores por nombre.
func (uc *SupplierUseCase) List(ctx context.Context, limit, offset int) ([]dto.SupplierDTO, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSupplierDTO(s))
	}
	return out, nil
}
