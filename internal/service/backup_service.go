package service

import (
	"context"
	"fmt"

	"github.com/nazim1903/Businesstracker/internal/dto"
	"github.com/nazim1903/Businesstracker/internal/model"
	"github.com/nazim1903/Businesstracker/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BackupVersion is the only dataset format version this build reads and writes.
const BackupVersion = "1.0.0"

// BackupService exports and restores the whole dataset. Import is a raw bulk
// load that replaces all four collections in one batch.
type BackupService interface {
	Export(ctx context.Context) (*dto.BackupDocument, error)
	Import(ctx context.Context, doc *dto.BackupDocument) (*dto.ImportSummary, error)
}

type backupService struct {
	store    repository.Store
	locks    *LockSet
	onCommit func(ctx context.Context)
}

// NewBackupService shares locks with the ledger so an import waits for
// in-flight writes and blocks new ones.
func NewBackupService(store repository.Store, locks *LockSet, onCommit func(ctx context.Context)) BackupService {
	if locks == nil {
		locks = NewLockSet()
	}
	return &backupService{store: store, locks: locks, onCommit: onCommit}
}

func (s *backupService) Export(ctx context.Context) (*dto.BackupDocument, error) {
	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	doc := &dto.BackupDocument{Dataset: *ds, Version: BackupVersion}
	normalize(&doc.Dataset)
	log.Info().
		Int("customers", len(doc.Customers)).
		Int("orders", len(doc.Orders)).
		Int("payments", len(doc.Payments)).
		Int("products", len(doc.Products)).
		Msg("dataset exported")
	return doc, nil
}

func (s *backupService) Import(ctx context.Context, doc *dto.BackupDocument) (*dto.ImportSummary, error) {
	if doc == nil {
		return nil, &ValidationError{Fields: map[string]string{"_": "required"}}
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	normalize(&doc.Dataset)

	b := repository.NewBatch().Truncate()
	for i := range doc.Customers {
		b.PutCustomer(&doc.Customers[i])
	}
	for i := range doc.Orders {
		b.PutOrder(&doc.Orders[i])
	}
	for i := range doc.Products {
		p := doc.Products[i]
		p.Recompute()
		b.PutProduct(&p)
	}
	for i := range doc.Payments {
		b.PutPayment(&doc.Payments[i])
	}

	unlock := s.locks.Exclusive()
	defer unlock()

	if err := s.store.Apply(ctx, b); err != nil {
		log.Error().Err(err).Int("writes", b.Len()).Msg("dataset import failed")
		return nil, &AtomicityError{Op: "import dataset", Err: err}
	}
	if s.onCommit != nil {
		s.onCommit(ctx)
	}

	summary := &dto.ImportSummary{
		Version:   doc.Version,
		Customers: len(doc.Customers),
		Products:  len(doc.Products),
		Payments:  len(doc.Payments),
		Orders:    len(doc.Orders),
	}
	log.Info().
		Int("customers", summary.Customers).
		Int("orders", summary.Orders).
		Int("payments", summary.Payments).
		Int("products", summary.Products).
		Msg("dataset imported")
	return summary, nil
}

func validateDocument(doc *dto.BackupDocument) error {
	fe := fieldErrors{}
	switch doc.Version {
	case "":
		fe.add("version", "required")
	case BackupVersion:
	default:
		fe.add("version", "unsupported")
	}
	checkIDs(fe, "customers", len(doc.Customers), func(i int) uuid.UUID { return doc.Customers[i].ID })
	checkIDs(fe, "orders", len(doc.Orders), func(i int) uuid.UUID { return doc.Orders[i].ID })
	checkIDs(fe, "payments", len(doc.Payments), func(i int) uuid.UUID { return doc.Payments[i].ID })
	checkIDs(fe, "products", len(doc.Products), func(i int) uuid.UUID { return doc.Products[i].ID })
	for _, p := range doc.Payments {
		if !model.IsPaymentType(p.Type) || !model.IsPaymentStatus(p.Status) {
			fe.add("payments", "invalid_record")
		}
	}
	for _, o := range doc.Orders {
		if !model.IsOrderStatus(o.Status) {
			fe.add("orders", "invalid_record")
		}
	}
	return fe.err()
}

func checkIDs(fe fieldErrors, collection string, n int, id func(int) uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == uuid.Nil {
			fe.add(collection, "missing_id")
			return
		}
		if _, dup := seen[v]; dup {
			fe.add(collection, "duplicate_id")
			return
		}
		seen[v] = struct{}{}
	}
}

// normalize replaces nil collections with empty ones so an exported document
// always carries all four arrays.
func normalize(ds *model.Dataset) {
	if ds.Customers == nil {
		ds.Customers = []model.Customer{}
	}
	if ds.Products == nil {
		ds.Products = []model.Product{}
	}
	if ds.Payments == nil {
		ds.Payments = []model.Payment{}
	}
	if ds.Orders == nil {
		ds.Orders = []model.Order{}
	}
}
