package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e inventory.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newUseCase(events inventory.EventPublisher, lowStock int) *inventory.SweetUseCase {
	repo := memory.NewSweetRepository()
	return inventory.NewSweetUseCase(repo, memory.NewTxRunner(repo), events, lowStock)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func create(t *testing.T, uc *inventory.SweetUseCase, name, category, price string, qty int) *dto.SweetResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), dto.CreateSweetRequest{
		Name: name, Category: category, Price: dec(price), Quantity: intp(qty),
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_AsignaIDYValida(t *testing.T) {
	uc := newUseCase(nil, 0)
	ctx := context.Background()

	a := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	b := create(t, uc, "Candy", "Candy", "1.00", 50)
	assert.NotZero(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := uc.Create(ctx, dto.CreateSweetRequest{Name: "X", Category: "Y", Price: dec("0"), Quantity: intp(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateSweetRequest{Name: "X", Category: "Y", Price: dec("1"), Quantity: intp(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateSweetRequest{Name: " ", Category: "Y", Price: dec("1"), Quantity: intp(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID_NoEncontrado(t *testing.T) {
	uc := newUseCase(nil, 0)

	_, err := uc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_SoloPrecio(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)

	out, err := uc.Update(context.Background(), s.ID, dto.UpdateSweetRequest{Price: dec("3.10")})
	require.NoError(t, err)

	assert.True(t, out.Price.Equal(decimal.RequireFromString("3.10")))
	assert.Equal(t, s.Name, out.Name)
	assert.Equal(t, s.Category, out.Category)
	assert.Equal(t, s.Quantity, out.Quantity)
}

func TestUpdate_TodosLosCamposYErrores(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	ctx := context.Background()

	out, err := uc.Update(ctx, s.ID, dto.UpdateSweetRequest{
		Name: strp("Dark Bar"), Category: strp("Dark"), Price: dec("4"), Quantity: intp(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dark Bar", out.Name)
	assert.Equal(t, "Dark", out.Category)
	assert.Equal(t, 7, out.Quantity)

	_, err = uc.Update(ctx, s.ID, dto.UpdateSweetRequest{Quantity: intp(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, 999, dto.UpdateSweetRequest{Price: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Toffee", "Caramel", "0.80", 3)
	ctx := context.Background()

	require.NoError(t, uc.Delete(ctx, s.ID))

	_, err := uc.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, s.ID), domain.ErrNotFound)
}

func TestList_OrdenDeCreacion(t *testing.T) {
	uc := newUseCase(nil, 0)
	create(t, uc, "A", "X", "1", 1)
	create(t, uc, "B", "X", "1", 1)
	create(t, uc, "C", "X", "1", 1)

	list, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

// ──────────────────────────────────────────────────────────────────────────────
// Search
// ──────────────────────────────────────────────────────────────────────────────

func TestSearch_CategoriaYRangoDePrecio(t *testing.T) {
	uc := newUseCase(nil, 0)
	create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	create(t, uc, "Candy", "Candy", "1.00", 50)
	ctx := context.Background()

	list, err := uc.Search(ctx, dto.SearchSweetRequest{Category: "Chocolate", MinPrice: dec("1.00"), MaxPrice: dec("5.00")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Chocolate Bar", list[0].Name)

	// Límites inclusivos.
	list, err = uc.Search(ctx, dto.SearchSweetRequest{MinPrice: dec("1.00"), MaxPrice: dec("1.00")})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Candy", list[0].Name)

	// Nombre: subcadena sin distinguir mayúsculas.
	list, err = uc.Search(ctx, dto.SearchSweetRequest{Name: "olate b"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Categoría exacta.
	list, err = uc.Search(ctx, dto.SearchSweetRequest{Category: "chocolate"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	list, err = uc.Search(ctx, dto.SearchSweetRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Purchase / Restock
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_DescuentaYRechazaSinStock(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	ctx := context.Background()

	out, err := uc.Purchase(ctx, s.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 90, out.Quantity)

	_, err = uc.Purchase(ctx, s.ID, 150)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 90, stockErr.Available)
	assert.Equal(t, 150, stockErr.Requested)

	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Quantity)

	out, err = uc.Purchase(ctx, s.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Quantity)
}

func TestPurchase_CantidadInvalidaYNoEncontrado(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Candy", "Candy", "1.00", 5)
	ctx := context.Background()

	_, err := uc.Purchase(ctx, s.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Purchase(ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Restock(ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Restock(ctx, s.ID, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRestock_DesbordeNoCambiaElStock(t *testing.T) {
	events := &recordingPublisher{}
	uc := newUseCase(events, 0)
	s := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	ctx := context.Background()

	_, err := uc.Restock(ctx, s.ID, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Restock(ctx, s.ID, math.MaxInt32-99)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Quantity)
	assert.Empty(t, events.types())
}

func TestRestockLuegoPurchase_VuelveAlOriginal(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Gummy Bears", "Gummies", "1.20", 10)
	ctx := context.Background()

	out, err := uc.Restock(ctx, s.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 35, out.Quantity)

	out, err = uc.Purchase(ctx, s.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Quantity)
}

func TestPurchase_ConcurrenteNuncaNegativo(t *testing.T) {
	uc := newUseCase(nil, 0)
	s := create(t, uc, "Chocolate Bar", "Chocolate", "2.50", 100)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Purchase(ctx, s.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, ok)
	assert.Equal(t, 50, fail)
	got, err := uc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestEventos_CompraReposicionYStockBajo(t *testing.T) {
	pub := &recordingPublisher{}
	uc := newUseCase(pub, 5)
	s := create(t, uc, "Toffee", "Caramel", "0.80", 10)
	ctx := context.Background()

	_, err := uc.Purchase(ctx, s.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{inventory.EventPurchased}, pub.types())

	_, err = uc.Purchase(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{inventory.EventPurchased, inventory.EventPurchased, inventory.EventLowStock}, pub.types())

	_, err = uc.Restock(ctx, s.ID, 20)
	require.NoError(t, err)
	types := pub.types()
	assert.Equal(t, inventory.EventRestocked, types[len(types)-1])

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, 20, last.Quantity)
	assert.Equal(t, 25, last.Remaining)
	assert.Equal(t, "Toffee", last.SweetName)
	assert.NotEmpty(t, last.ID)
}

func TestEventos_SinEventoSiLaCompraFalla(t *testing.T) {
	pub := &recordingPublisher{}
	uc := newUseCase(pub, 0)
	s := create(t, uc, "Toffee", "Caramel", "0.80", 1)

	_, err := uc.Purchase(context.Background(), s.ID, 2)
	require.Error(t, err)
	assert.Empty(t, pub.types())
}

func TestEventos_FalloDelPublisherNoFallaLaOperacion(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker caído")}
	uc := newUseCase(pub, 0)
	s := create(t, uc, "Toffee", "Caramel", "0.80", 3)

	out, err := uc.Purchase(context.Background(), s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Quantity)
}

func TestFanOut_EntregaATodosYUneErrores(t *testing.T) {
	a := &recordingPublisher{err: errors.New("a")}
	b := &recordingPublisher{}
	fan := inventory.FanOut{a, nil, b}

	err := fan.Publish(context.Background(), inventory.Event{Type: inventory.EventRestocked})
	assert.Error(t, err)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.NoError(t, inventory.FanOut{b}.Publish(context.Background(), inventory.Event{}))
}
