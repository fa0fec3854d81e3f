package service

import (
	"context"
	"strconv"
	"time"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockEligibilityRepo struct {
	records   map[int64]*entity.EligibilityRecord
	unslipped []*entity.EligibilityRecord
	marked    map[int64]int64
	deleted   []int64
	statuses  map[int64]entity.EligibilityStatus
}

func newMockEligibilityRepo() *mockEligibilityRepo {
	return &mockEligibilityRepo{
		records:  make(map[int64]*entity.EligibilityRecord),
		marked:   make(map[int64]int64),
		statuses: make(map[int64]entity.EligibilityStatus),
	}
}

func (m *mockEligibilityRepo) add(rec *entity.EligibilityRecord) {
	m.records[rec.ID] = rec
	if rec.Status == entity.EligibilityApproved && rec.TransmissionID == nil {
		m.unslipped = append(m.unslipped, rec)
	}
}

func (m *mockEligibilityRepo) Create(ctx context.Context, rec *entity.EligibilityRecord) error {
	rec.ID = int64(len(m.records) + 1)
	m.records[rec.ID] = rec
	return nil
}

func (m *mockEligibilityRepo) GetByID(ctx context.Context, id int64) (*entity.EligibilityRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return rec, nil
}

func (m *mockEligibilityRepo) ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	var out []*entity.EligibilityRecord
	for _, rec := range m.records {
		if rec.TaxYear == taxYear {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockEligibilityRepo) ListUnslipped(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	var out []*entity.EligibilityRecord
	for _, rec := range m.unslipped {
		if rec.TaxYear == taxYear {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockEligibilityRepo) UpdateStatus(ctx context.Context, id int64, status entity.EligibilityStatus) error {
	m.statuses[id] = status
	return nil
}

func (m *mockEligibilityRepo) MarkSlipped(ctx context.Context, id, transmissionID int64) error {
	m.marked[id] = transmissionID
	return nil
}

func (m *mockEligibilityRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.records, id)
	return nil
}

type mockTransmissionRepo struct {
	byID          map[int64]*entity.Transmission
	nextSeq       int
	conflictsLeft int
	statusUpdates map[int64]string
}

func newMockTransmissionRepo() *mockTransmissionRepo {
	return &mockTransmissionRepo{
		byID:          make(map[int64]*entity.Transmission),
		nextSeq:       1,
		statusUpdates: make(map[int64]string),
	}
}

func (m *mockTransmissionRepo) Create(ctx context.Context, tr *entity.Transmission) error {
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		m.nextSeq++
		return port.ErrSequenceConflict
	}
	tr.ID = int64(len(m.byID) + 1)
	tr.CreatedAt = time.Now()
	m.byID[tr.ID] = tr
	m.nextSeq = tr.SequenceNumber + 1
	return nil
}

func (m *mockTransmissionRepo) GetByID(ctx context.Context, id int64) (*entity.Transmission, error) {
	tr, ok := m.byID[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return tr, nil
}

func (m *mockTransmissionRepo) GetByUUID(ctx context.Context, uuid string) (*entity.Transmission, error) {
	for _, tr := range m.byID {
		if tr.UUID == uuid {
			return tr, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *mockTransmissionRepo) ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.Transmission, error) {
	var out []*entity.Transmission
	for _, tr := range m.byID {
		if tr.TaxYear == taxYear {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *mockTransmissionRepo) List(ctx context.Context, limit, offset int) ([]*entity.Transmission, error) {
	var out []*entity.Transmission
	for _, tr := range m.byID {
		out = append(out, tr)
	}
	return out, nil
}

func (m *mockTransmissionRepo) NextSequenceNumber(ctx context.Context, taxYear int) (int, error) {
	return m.nextSeq, nil
}

func (m *mockTransmissionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.statusUpdates[id] = status
	if tr, ok := m.byID[id]; ok {
		tr.Status = status
	}
	return nil
}

func (m *mockTransmissionRepo) SetValidationClean(ctx context.Context, id int64, clean bool) error {
	if tr, ok := m.byID[id]; ok {
		tr.ValidationClean = clean
	}
	return nil
}

type mockSlipRepo struct {
	created []*entity.Slip
}

func (m *mockSlipRepo) Create(ctx context.Context, s *entity.Slip) error {
	s.ID = int64(len(m.created) + 1)
	m.created = append(m.created, s)
	return nil
}

func (m *mockSlipRepo) GetByTransmissionID(ctx context.Context, transmissionID int64) ([]*entity.Slip, error) {
	var out []*entity.Slip
	for _, s := range m.created {
		if s.TransmissionID == transmissionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSlipRepo) FindBySlipNumber(ctx context.Context, taxYear int, slipNumber string) (*entity.Slip, error) {
	for _, s := range m.created {
		if s.TaxYear == taxYear && s.SlipNumber == slipNumber {
			return s, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *mockSlipRepo) NextSlipNumber(ctx context.Context, taxYear int) (int, error) {
	max := 0
	for _, s := range m.created {
		if s.TaxYear != taxYear {
			continue
		}
		if n, err := strconv.Atoi(s.SlipNumber); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

type mockTxManager struct {
	calls     int
	commitErr error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return m.commitErr
}

type mockStorage struct {
	saved map[string][]byte
}

func newMockStorage() *mockStorage {
	return &mockStorage{saved: make(map[string][]byte)}
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	content, ok := m.saved[path]
	if !ok {
		return nil, port.ErrNotFound
	}
	return content, nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	delete(m.saved, path)
	return nil
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "/tmp/" + relativePath
}

type mockSettings struct {
	profile     entity.ProviderProfile
	transmitter string
}

func (m *mockSettings) ProviderProfile(ctx context.Context) (entity.ProviderProfile, error) {
	return m.profile, nil
}

func (m *mockSettings) TransmitterName(ctx context.Context) (string, error) {
	return m.transmitter, nil
}
