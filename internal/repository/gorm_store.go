package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nazim1903/Businesstracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists the four collections through GORM (postgres or sqlite).
// Apply runs every batch inside a single database transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

// DB exposes the connection for health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &o, nil
}

func (s *GormStore) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *GormStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	out := make([]model.Customer, 0)
	err := s.db.WithContext(ctx).Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	q := s.db.WithContext(ctx).Model(&model.Order{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	out := make([]model.Order, 0)
	err := q.Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	q := s.db.WithContext(ctx).Model(&model.Payment{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.OrderID != nil {
		q = q.Where("order_id = ?", *f.OrderID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	out := make([]model.Payment, 0)
	err := q.Order("date DESC, id ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	out := make([]model.Product, 0)
	err := q.Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}

// Snapshot reads all four tables inside one transaction. On postgres the
// transaction is read-only REPEATABLE READ so the four reads share a snapshot;
// sqlite transactions are already serializable.
func (s *GormStore) Snapshot(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{
		Customers: make([]model.Customer, 0),
		Orders:    make([]model.Order, 0),
		Payments:  make([]model.Payment, 0),
		Products:  make([]model.Product, 0),
	}
	var opts []*sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at DESC, id ASC").Find(&ds.Customers).Error; err != nil {
			return err
		}
		if err := tx.Order("created_at DESC, id ASC").Find(&ds.Orders).Error; err != nil {
			return err
		}
		if err := tx.Order("date DESC, id ASC").Find(&ds.Payments).Error; err != nil {
			return err
		}
		return tx.Order("created_at DESC, id ASC").Find(&ds.Products).Error
	}, opts...)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *GormStore) Apply(ctx context.Context, b *Batch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, o := range b.ops {
			if err := applyOp(tx, o); err != nil {
				if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
					return err
				}
				return fmt.Errorf("batch op %d: %w", i, err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, v any) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(v).Error
}

func applyOp(tx *gorm.DB, o op) error {
	switch o.kind {
	case opPutCustomer:
		return upsert(tx, o.customer)
	case opPutOrder:
		if o.guard == nil {
			return upsert(tx, o.order)
		}
		// Conditional UPDATE: on postgres a concurrent writer blocks on the row
		// lock and then re-evaluates the WHERE clause, so only one guarded
		// write can win.
		q := tx.Model(&model.Order{}).Where("id = ?", o.id)
		if len(o.guard.Statuses) > 0 {
			q = q.Where("status IN ?", o.guard.Statuses)
		}
		if o.guard.DepositTransferred != nil {
			q = q.Where("deposit_transferred = ?", *o.guard.DepositTransferred)
		}
		res := q.Select("*").Updates(o.order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	case opPutPayment:
		if o.mustExist {
			return updateExisting(tx, &model.Payment{}, o.id, o.payment)
		}
		return upsert(tx, o.payment)
	case opPutProduct:
		if o.mustExist {
			return updateExisting(tx, &model.Product{}, o.id, o.product)
		}
		return upsert(tx, o.product)
	case opDeleteCustomer:
		return tx.Delete(&model.Customer{}, "id = ?", o.id).Error
	case opDeleteOrder:
		return tx.Delete(&model.Order{}, "id = ?", o.id).Error
	case opDeletePayment:
		return tx.Delete(&model.Payment{}, "id = ?", o.id).Error
	case opDeleteProduct:
		return tx.Delete(&model.Product{}, "id = ?", o.id).Error
	case opDeleteOrderPayments:
		return tx.Where("order_id = ?", o.id).Delete(&model.Payment{}).Error
	case opDeleteCustomerRecords:
		owned := tx.Model(&model.Order{}).Select("id").Where("customer_id = ?", o.id)
		if err := tx.Where("customer_id = ? OR order_id IN (?)", o.id.String(), owned).
			Delete(&model.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", o.id).Delete(&model.Order{}).Error; err != nil {
			return err
		}
		return tx.Where("customer_id = ?", o.id).Delete(&model.Product{}).Error
	case opExpectCustomer:
		return expectRow(tx, &model.Customer{}, o.id)
	case opExpectOrder:
		return expectRow(tx, &model.Order{}, o.id)
	case opTruncate:
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&model.Payment{}, &model.Product{}, &model.Order{}, &model.Customer{}} {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown batch op %d", o.kind)
}

// updateExisting rewrites every column of the row with id, failing with
// ErrConflict when the row is gone.
func updateExisting(tx *gorm.DB, table any, id uuid.UUID, v any) error {
	res := tx.Model(table).Where("id = ?", id).Select("*").Updates(v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// expectRow fails with ErrNotFound unless the row with id exists. FOR SHARE
// keeps a concurrent delete from removing it before this transaction commits;
// sqlite drops the clause.
func expectRow(tx *gorm.DB, table any, id uuid.UUID) error {
	var ids []uuid.UUID
	err := tx.Model(table).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ?", id).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
