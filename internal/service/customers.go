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
)

func (s *ledgerService) CreateCustomer(ctx context.Context, req dto.CustomerRequest) (*model.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	c := &model.Customer{
		ID:        s.newID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     trimmed(req.Email),
		Phone:     trimmed(req.Phone),
		CreatedAt: optionalTime(req.CreatedAt, s.now()),
	}
	if err := s.apply(ctx, "create customer", repository.NewBatch().PutCustomer(c)); err != nil {
		return nil, err
	}
	log.Info().Str("customer_id", c.ID.String()).Msg("customer created")
	return c, nil
}

func (s *ledgerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*model.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.customer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Email = trimmed(req.Email)
	c.Phone = trimmed(req.Phone)

	b := repository.NewBatch().ExpectCustomer(id).PutCustomer(c)
	if err := s.apply(ctx, "update customer", b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", ID: id.String()}
		}
		return nil, err
	}
	return c, nil
}

func (s *ledgerService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.customer(ctx, id)
}

func (s *ledgerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// DeleteCustomer removes the customer together with every order, product and
// payment that references it. Deleting an unknown id succeeds.
func (s *ledgerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	b := repository.NewBatch().DeleteCustomerRecords(id).DeleteCustomer(id)
	if err := s.apply(ctx, "delete customer", b); err != nil {
		return err
	}
	log.Info().Str("customer_id", id.String()).Msg("customer deleted with dependent records")
	return nil
}

func validateCustomer(req dto.CustomerRequest) error {
	fe := fieldErrors{}
	fe.merge(dto.Validate(req))
	if strings.TrimSpace(req.Name) == "" {
		fe.add("Name", "required")
	}
	return fe.err()
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
