package repository

import (
	"context"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

// CountSessionRepository define el puerto de persistencia de sesiones de conteo.
// GetByID devuelve (nil, nil) si la sesión no existe.
type CountSessionRepository interface {
	Create(ctx context.Context, session *entity.CountSession) error
	Update(ctx context.Context, session *entity.CountSession) error
	GetByID(ctx context.Context, id string) (*entity.CountSession, error)
	ListActive(ctx context.Context) ([]*entity.CountSession, error)
	List(ctx context.Context, limit, offset int) ([]*entity.CountSession, error)
}
