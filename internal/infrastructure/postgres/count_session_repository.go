package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.CountSessionRepository = (*CountSessionRepo)(nil)

// CountSessionRepo persiste sesiones de conteo: cabecera en count_sessions y una fila por ítem del
// alcance en count_session_items (línea base congelada + conteo). touched_seq conserva el orden
// en que se tocaron las líneas.
type CountSessionRepo struct {
	db DB
}

// NewCountSessionRepository construye el adaptador. Necesita el pool: escribe en varias tablas.
func NewCountSessionRepository(db DB) *CountSessionRepo {
	return &CountSessionRepo{db: db}
}

// Create persiste la cabecera y la línea base completa.
func (r *CountSessionRepo) Create(ctx context.Context, s *entity.CountSession) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO count_sessions (id, category_id, responsible, status, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, nullableString(s.Scope.CategoryID), s.Responsible, string(s.Status), s.StartedAt, s.FinishedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert count session: %w", err)
		}

		batch := &pgx.Batch{}
		for i, line := range s.Lines() {
			batch.Queue(`
				INSERT INTO count_session_items (session_id, item_id, position, system_qty)
				VALUES ($1, $2, $3, $4)`,
				s.ID, line.ItemID, i, line.SystemQty,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert count baseline: %w", err)
		}
		return nil
	})
}

// Update persiste estado, fechas y las líneas tocadas (conteo, marca de ajuste y orden).
func (r *CountSessionRepo) Update(ctx context.Context, s *entity.CountSession) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE count_sessions SET status = $2, finished_at = $3 WHERE id = $1`,
			s.ID, string(s.Status), s.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("update count session: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		batch := &pgx.Batch{}
		for seq, e := range s.Entries() {
			batch.Queue(`
				UPDATE count_session_items
				SET physical_qty = $3, counted_at = $4, adjusted = $5, touched_seq = $6
				WHERE session_id = $1 AND item_id = $2`,
				s.ID, e.ItemID, e.PhysicalQty, e.CountedAt, e.Adjusted, seq,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("update count entries: %w", err)
		}
		return nil
	})
}

// GetByID reconstruye la sesión; (nil, nil) si no existe.
func (r *CountSessionRepo) GetByID(ctx context.Context, id string) (*entity.CountSession, error) {
	var (
		categoryID *string
		status     string
		h          entity.CountSession
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, category_id, responsible, status, started_at, finished_at
		FROM count_sessions WHERE id = $1`, id,
	).Scan(&h.ID, &categoryID, &h.Responsible, &status, &h.StartedAt, &h.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count session: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT item_id, system_qty, physical_qty, counted_at, adjusted, touched_seq
		FROM count_session_items
		WHERE session_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list count entries: %w", err)
	}
	defer rows.Close()

	var (
		baseline []entity.CountEntry
		touched  = map[int]string{}
	)
	for rows.Next() {
		var (
			e   entity.CountEntry
			seq *int
		)
		if err := rows.Scan(&e.ItemID, &e.SystemQty, &e.PhysicalQty, &e.CountedAt, &e.Adjusted, &seq); err != nil {
			return nil, fmt.Errorf("scan count entry: %w", err)
		}
		baseline = append(baseline, e)
		if seq != nil {
			touched[*seq] = e.ItemID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seqs := make([]int, 0, len(touched))
	for seq := range touched {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)
	order := make([]string, 0, len(seqs))
	for _, seq := range seqs {
		order = append(order, touched[seq])
	}

	return entity.RestoreCountSession(h.ID, entity.ScopeCategory(derefString(categoryID)), h.Responsible,
		entity.CountStatus(status), h.StartedAt, h.FinishedAt, baseline, order), nil
}

// ListActive devuelve las sesiones ACTIVE.
func (r *CountSessionRepo) ListActive(ctx context.Context) ([]*entity.CountSession, error) {
	return r.listWhere(ctx, `WHERE status = 'ACTIVE' ORDER BY started_at`)
}

// List lista sesiones de la más reciente a la más antigua.
func (r *CountSessionRepo) List(ctx context.Context, limit, offset int) ([]*entity.CountSession, error) {
	return r.listWhere(ctx, `ORDER BY started_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *CountSessionRepo) listWhere(ctx context.Context, clause string, args ...any) ([]*entity.CountSession, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM count_sessions `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("list count sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan count session ids: %w", err)
	}

	out := make([]*entity.CountSession, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}
