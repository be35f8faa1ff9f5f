package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var errDBDown = errors.New("conexión cerrada")

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu      sync.Mutex
	items   []entity.CatalogItem
	failOn  map[string]error
	writes  []string
	onWrite func(itemID string)
}

func newFakeCatalog(items ...entity.CatalogItem) *fakeCatalog {
	return &fakeCatalog{items: items, failOn: map[string]error{}}
}

func (f *fakeCatalog) ListItems(_ context.Context, filter repository.CatalogFilter) ([]entity.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.CatalogItem
	for _, it := range f.items {
		if it.DeletedAt != nil {
			continue
		}
		if filter.CategoryID != "" && it.CategoryID != filter.CategoryID {
			continue
		}
		if filter.OnlyEPI && !it.IsEPI {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]entity.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.CatalogItem
	for _, id := range ids {
		for _, it := range f.items {
			if it.ID == id {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) WriteQuantity(_ context.Context, itemID string, quantity int) error {
	if f.onWrite != nil {
		f.onWrite(itemID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[itemID]; err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = quantity
			f.writes = append(f.writes, itemID)
			return nil
		}
	}
	return errors.New("ítem inexistente")
}

func (f *fakeCatalog) quantity(itemID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == itemID {
			return it.Quantity
		}
	}
	return -1
}

// fakeTx aplica las escrituras sobre una copia y solo las publica si fn no falla.
type fakeTx struct {
	catalog *fakeCatalog
	runs    int
}

func (t *fakeTx) Run(ctx context.Context, fn func(catalog repository.CatalogRepository) error) error {
	t.runs++
	t.catalog.mu.Lock()
	staged := &fakeCatalog{items: append([]entity.CatalogItem(nil), t.catalog.items...), failOn: t.catalog.failOn}
	t.catalog.mu.Unlock()

	if err := fn(staged); err != nil {
		return err
	}
	t.catalog.mu.Lock()
	t.catalog.items = staged.items
	t.catalog.writes = append(t.catalog.writes, staged.writes...)
	t.catalog.mu.Unlock()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos, compras y proveedores
// ──────────────────────────────────────────────────────────────────────────────

type fakeMovements struct{ records []entity.MovementRecord }

func (f *fakeMovements) ListMovements(_ context.Context, _ []string, since, until time.Time) ([]entity.MovementRecord, error) {
	var out []entity.MovementRecord
	for _, m := range f.records {
		if !m.Timestamp.Before(since) && !m.Timestamp.After(until) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePurchases struct {
	byItem map[string][]entity.PurchaseRecord
}

// ListLastPricedPurchases respeta el contrato del puerto: solo compras con precio, recientes
// primero, como máximo perItem por ítem.
func (f *fakePurchases) ListLastPricedPurchases(_ context.Context, itemIDs []string, perItem int) (map[string][]entity.PurchaseRecord, error) {
	out := make(map[string][]entity.PurchaseRecord, len(itemIDs))
	for _, id := range itemIDs {
		var priced []entity.PurchaseRecord
		for _, p := range f.byItem[id] {
			if p.UnitPrice != nil {
				priced = append(priced, p)
			}
		}
		sort.SliceStable(priced, func(i, j int) bool { return priced[i].Date.After(priced[j].Date) })
		if len(priced) > perItem {
			priced = priced[:perItem]
		}
		if len(priced) > 0 {
			out[id] = priced
		}
	}
	return out, nil
}

type fakeSuppliers struct{ byID map[string]*entity.Supplier }

func (f *fakeSuppliers) Create(_ context.Context, s *entity.Supplier) error {
	if f.byID == nil {
		f.byID = map[string]*entity.Supplier{}
	}
	cp := *s
	f.byID[s.ID] = &cp
	return nil
}

func (f *fakeSuppliers) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	return f.byID[id], nil
}

func (f *fakeSuppliers) GetByTaxID(_ context.Context, taxID string) (*entity.Supplier, error) {
	for _, s := range f.byID {
		if s.TaxID == taxID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSuppliers) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	all := make([]*entity.Supplier, 0, len(f.byID))
	for _, s := range f.byID {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones y pedidos (guardan copias, como la base)
// ──────────────────────────────────────────────────────────────────────────────

type fakeSessions struct {
	mu       sync.Mutex
	byID     map[string]*entity.CountSession
	statuses []entity.CountStatus // estado en cada Update
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]*entity.CountSession{}}
}

func cloneSession(s *entity.CountSession) *entity.CountSession {
	return entity.RestoreCountSession(s.ID, s.Scope, s.Responsible, s.Status, s.StartedAt, s.FinishedAt, s.Lines(), s.TouchedItemIDs())
}

func (f *fakeSessions) Create(_ context.Context, s *entity.CountSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[s.ID] = cloneSession(s)
	return nil
}

func (f *fakeSessions) Update(_ context.Context, s *entity.CountSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[s.ID] = cloneSession(s)
	f.statuses = append(f.statuses, s.Status)
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (*entity.CountSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (f *fakeSessions) ListActive(ctx context.Context) ([]*entity.CountSession, error) {
	all, _ := f.List(ctx, 0, 0)
	var out []*entity.CountSession
	for _, s := range all {
		if s.Status == entity.CountStatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) List(_ context.Context, _, _ int) ([]*entity.CountSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.CountSession, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSessions) status(id string) entity.CountStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

type fakeOrders struct {
	byID map[string]entity.PurchaseOrder
}

func newFakeOrders() *fakeOrders { return &fakeOrders{byID: map[string]entity.PurchaseOrder{}} }

func (f *fakeOrders) save(o *entity.PurchaseOrder) {
	c := *o
	c.Lines = append([]entity.OrderLine(nil), o.Lines...)
	f.byID[o.ID] = c
}

func (f *fakeOrders) Create(_ context.Context, o *entity.PurchaseOrder) error { f.save(o); return nil }
func (f *fakeOrders) Update(_ context.Context, o *entity.PurchaseOrder) error { f.save(o); return nil }

func (f *fakeOrders) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &o, nil
}

func (f *fakeOrders) List(_ context.Context, status string, _, _ int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for id := range f.byID {
		o, _ := f.GetByID(context.Background(), id)
		if status == "" || string(o.Status) == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché, PDF y correo
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	data  map[string][]byte
	loads int
	bumps int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if raw, ok := c.data[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	c.loads++
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Bump(context.Context) error {
	c.bumps++
	c.data = map[string][]byte{}
	return nil
}

type fakeRenderer struct{ calls int }

func (r *fakeRenderer) RenderPurchaseOrder(_ context.Context, o *entity.PurchaseOrder, _ *entity.Supplier) ([]byte, error) {
	r.calls++
	return []byte("%PDF-" + o.ID), nil
}

type fakeMailer struct {
	err  error
	sent []string
	docs [][]byte
}

func (m *fakeMailer) SendPurchaseOrder(_ context.Context, o *entity.PurchaseOrder, s *entity.Supplier, doc []byte) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o.ID+"→"+s.Email)
	m.docs = append(m.docs, doc)
	return nil
}
