package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/dto"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/domain/entity"
	"github.com/jhoicas/sweetshop-api/internal/domain/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
)

// SweetUseCase CRUD, búsqueda, compra y reposición de dulces.
// Toda mutación de una fila existente corre dentro de TxRunner con la fila bloqueada.
type SweetUseCase struct {
	repo     repository.SweetRepository
	txRunner TxRunner
	events   EventPublisher
	lowStock int
	now      func() time.Time
}

// NewSweetUseCase construye el caso de uso. events puede ser nil; lowStock <= 0 desactiva el aviso de stock bajo.
func NewSweetUseCase(repo repository.SweetRepository, txRunner TxRunner, events EventPublisher, lowStock int) *SweetUseCase {
	if events == nil {
		events = NopPublisher{}
	}
	return &SweetUseCase{repo: repo, txRunner: txRunner, events: events, lowStock: lowStock, now: time.Now}
}

// Create persiste un dulce nuevo; el id lo asigna el store.
func (uc *SweetUseCase) Create(ctx context.Context, in dto.CreateSweetRequest) (*dto.SweetResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	sweet := &entity.Sweet{
		Name:      in.Name,
		Category:  in.Category,
		Price:     *in.Price,
		Quantity:  *in.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, sweet); err != nil {
		return nil, err
	}
	return toSweetResponse(sweet), nil
}

// GetByID obtiene un dulce o ErrNotFound.
func (uc *SweetUseCase) GetByID(ctx context.Context, id int64) (*dto.SweetResponse, error) {
	sweet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sweet == nil {
		return nil, notFound(id)
	}
	return toSweetResponse(sweet), nil
}

// List devuelve todos los dulces en el orden del store.
func (uc *SweetUseCase) List(ctx context.Context) ([]dto.SweetResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toSweetResponses(list), nil
}

// Search aplica los filtros presentes con AND. Cero coincidencias es una lista vacía, no un error.
func (uc *SweetUseCase) Search(ctx context.Context, in dto.SearchSweetRequest) ([]dto.SweetResponse, error) {
	list, err := uc.repo.Search(ctx, repository.SweetFilter{
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
	})
	if err != nil {
		return nil, err
	}
	return toSweetResponses(list), nil
}

// Update sobrescribe solo los campos presentes en la petición.
func (uc *SweetUseCase) Update(ctx context.Context, id int64, in dto.UpdateSweetRequest) (*dto.SweetResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *entity.Sweet
	err := uc.txRunner.Run(ctx, func(repo repository.SweetRepository) error {
		sweet, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sweet == nil {
			return notFound(id)
		}
		if in.Name != nil {
			sweet.Name = strings.TrimSpace(*in.Name)
		}
		if in.Category != nil {
			sweet.Category = strings.TrimSpace(*in.Category)
		}
		if in.Price != nil {
			sweet.Price = *in.Price
		}
		if in.Quantity != nil {
			sweet.Quantity = *in.Quantity
		}
		sweet.UpdatedAt = uc.now()
		if err := repo.Update(ctx, sweet); err != nil {
			return err
		}
		updated = sweet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSweetResponse(updated), nil
}

// Delete elimina la fila de forma permanente.
func (uc *SweetUseCase) Delete(ctx context.Context, id int64) error {
	found, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return notFound(id)
	}
	return nil
}

// Purchase descuenta quantity unidades. Si no alcanza devuelve *domain.InsufficientStockError
// y el stock queda intacto.
func (uc *SweetUseCase) Purchase(ctx context.Context, id int64, quantity int) (*dto.SweetResponse, error) {
	sweet, err := uc.move(ctx, id, func(s *entity.Sweet) error {
		return inventory.Withdraw(s, quantity)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, EventPurchased, sweet, quantity)
	return toSweetResponse(sweet), nil
}

// Restock suma quantity unidades; el total no puede superar inventory.MaxQuantity.
func (uc *SweetUseCase) Restock(ctx context.Context, id int64, quantity int) (*dto.SweetResponse, error) {
	sweet, err := uc.move(ctx, id, func(s *entity.Sweet) error {
		return inventory.Replenish(s, quantity)
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, EventRestocked, sweet, quantity)
	return toSweetResponse(sweet), nil
}

// move bloquea la fila, aplica el cambio de stock y persiste en la misma transacción.
func (uc *SweetUseCase) move(ctx context.Context, id int64, apply func(*entity.Sweet) error) (*entity.Sweet, error) {
	var moved *entity.Sweet
	err := uc.txRunner.Run(ctx, func(repo repository.SweetRepository) error {
		sweet, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sweet == nil {
			return notFound(id)
		}
		if err := apply(sweet); err != nil {
			return err
		}
		sweet.UpdatedAt = uc.now()
		if err := repo.Update(ctx, sweet); err != nil {
			return err
		}
		moved = sweet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (uc *SweetUseCase) publish(ctx context.Context, typ string, s *entity.Sweet, moved int) {
	now := uc.now()
	_ = uc.events.Publish(ctx, newEvent(typ, s, moved, now))
	if typ == EventPurchased && inventory.IsLowStock(s, uc.lowStock) {
		_ = uc.events.Publish(ctx, newEvent(EventLowStock, s, 0, now))
	}
}

func notFound(id int64) error {
	return fmt.Errorf("%w: dulce %d", domain.ErrNotFound, id)
}

func toSweetResponses(list []*entity.Sweet) []dto.SweetResponse {
	items := make([]dto.SweetResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSweetResponse(s))
	}
	return items
}

func toSweetResponse(s *entity.Sweet) *dto.SweetResponse {
	if s == nil {
		return nil
	}
	return &dto.SweetResponse{
		ID:       s.ID,
		Name:     s.Name,
		Category: s.Category,
		Price:    s.Price,
		Quantity: s.Quantity,
	}
}
