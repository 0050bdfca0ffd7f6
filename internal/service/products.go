package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type productInput struct {
	code       string
	name       string
	cost, sale decimal.Decimal
	customerID uuid.UUID
}

func validateProduct(req dto.ProductRequest) (productInput, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	in := productInput{
		code: strings.ToUpper(strings.TrimSpace(req.Code)),
		name: strings.TrimSpace(req.Product),
	}
	if in.name == "" {
		fe.add("Product", "required")
	}
	in.cost = requireAmount(fe, "CostPrice", req.CostPrice)
	in.sale = requireAmount(fe, "SalePrice", req.SalePrice)
	in.customerID = parseID(fe, "CustomerID", req.CustomerID)
	return in, fe.err()
}

func (s *ledgerService) CreateProduct(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	in, err := validateProduct(req)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(in.customerID)
	defer unlock()

	if _, err := s.customer(ctx, in.customerID); err != nil {
		return nil, err
	}
	now := s.now()
	p := &model.Product{
		ID:         s.newID(),
		Code:       in.code,
		Name:       in.name,
		CostPrice:  in.cost,
		SalePrice:  in.sale,
		CustomerID: in.customerID,
		CreatedAt:  optionalTime(req.CreatedAt, now),
		ModifiedAt: now,
	}
	p.Recompute()

	b := repository.NewBatch().ExpectCustomer(in.customerID).PutProduct(p)
	if err := s.apply(ctx, "create product", b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", ID: in.customerID.String()}
		}
		return nil, err
	}
	log.Info().Str("product_id", p.ID.String()).Str("profit", p.Profit.String()).Msg("product created")
	return p, nil
}

// UpdateProduct may move the sale to another customer; both are locked.
func (s *ledgerService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*model.Product, error) {
	in, err := validateProduct(req)
	if err != nil {
		return nil, err
	}
	p, err := s.product(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id, p.CustomerID, in.customerID)
	defer unlock()

	if p, err = s.product(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.customer(ctx, in.customerID); err != nil {
		return nil, err
	}
	p.Code = in.code
	p.Name = in.name
	p.CostPrice = in.cost
	p.SalePrice = in.sale
	p.CustomerID = in.customerID
	if req.CreatedAt != nil {
		p.CreatedAt = optionalTime(req.CreatedAt, p.CreatedAt)
	}
	p.ModifiedAt = s.now()
	p.Recompute()

	b := repository.NewBatch().ExpectCustomer(in.customerID).PutProductIf(p)
	if err := s.apply(ctx, "update product", b); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, &NotFoundError{Entity: "customer", ID: in.customerID.String()}
		case errors.Is(err, repository.ErrConflict):
			return nil, &NotFoundError{Entity: "product", ID: id.String()}
		}
		return nil, err
	}
	return p, nil
}

func (s *ledgerService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.product(ctx, id)
}

func (s *ledgerService) ListProducts(ctx context.Context, f dto.ProductFilter) ([]model.Product, error) {
	fe := fieldErrors{}
	fe.merge(dto.Validate(f))
	var rf repository.ProductFilter
	if f.CustomerID != "" {
		id := parseID(fe, "CustomerID", f.CustomerID)
		rf.CustomerID = &id
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, rf)
}

// DeleteProduct is idempotent.
func (s *ledgerService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.apply(ctx, "delete product", repository.NewBatch().DeleteProduct(id))
}
