package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/StockPOS-api/internal/application/dto"
	"github.com/jhoicas/StockPOS-api/internal/application/validation"
	"github.com/jhoicas/StockPOS-api/internal/domain"
	"github.com/jhoicas/StockPOS-api/internal/domain/entity"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
)

// ClientUseCase casos de uso para clientes.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create crea un nuevo cliente.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*entity.Client, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		TaxID:     in.TaxID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, domain.Persistence("crear cliente", err)
	}
	return client, nil
}

// Get obtiene un cliente o domain.ErrNotFound.
func (uc *ClientUseCase) Get(ctx context.Context, id string) (*entity.Client, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener cliente", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

// List lista clientes por nombre.
func (uc *ClientUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	limit, offset = clampPage(limit, offset)
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.Persistence("listar clientes", err)
	}
	return list, nil
}
