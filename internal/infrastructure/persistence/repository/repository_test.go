package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations("../../../../migrations"))
	return db
}

func testTransmissionRow(taxYear, sequence int) *entity.Transmission {
	return &entity.Transmission{
		UUID:             uuid.NewString(),
		TaxYear:          taxYear,
		SequenceNumber:   sequence,
		Filename:         "25123456001.xml",
		TransmissionType: entity.TransmissionOriginal,
		Status:           "GENERATED",
		Provider: entity.ProviderProfile{
			Name:           "Garderie Les Petits Explorateurs",
			NEQ:            "1234567890",
			AddressLine:    "123 Rue Principale",
			City:           "Montréal",
			Province:       "QC",
			PostalCode:     "H2X 1Y4",
			PreparerNumber: "123456",
		},
		SlipCount:       1,
		TotalDays:       200,
		TotalBox11:      6600.00,
		TotalBox12:      6600.00,
		TotalBox13:      500.00,
		TotalBox14:      6100.00,
		ValidationClean: true,
	}
}

func testEligibilityRow() *entity.EligibilityRecord {
	return &entity.EligibilityRecord{
		TaxYear:          2025,
		ChildFirstName:   "Emma",
		ChildLastName:    "Tremblay",
		ParentFirstName:  "Sophie",
		ParentLastName:   "Tremblay",
		ParentSIN:        "046454286",
		AddressLine:      "456 Avenue du Parc",
		City:             "Montréal",
		Province:         "QC",
		PostalCode:       "H2V 4E7",
		CanadianResident: true,
		ServiceStart:     time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		ServiceEnd:       time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC),
		DaysOfService:    200,
		EligibleFees:     6600.00,
		FeesPaid:         6600.00,
		FeesReimbursed:   500.00,
		Status:           entity.EligibilityApproved,
	}
}

func testSlipRow(transmissionID, eligibilityID int64, number string) *entity.Slip {
	return &entity.Slip{
		TransmissionID:      transmissionID,
		EligibilityID:       eligibilityID,
		SlipNumber:          number,
		SlipType:            entity.SlipOriginal,
		TaxYear:             2025,
		ChildFirstName:      "Emma",
		ChildLastName:       "Tremblay",
		ParentFirstName:     "Sophie",
		ParentLastName:      "Tremblay",
		ParentSIN:           "046454286",
		AddressLine:         "456 Avenue du Parc",
		City:                "Montréal",
		Province:            "QC",
		PostalCode:          "H2V 4E7",
		ServiceStart:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		ServiceEnd:          time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC),
		Box10Days:           200,
		Box11EligibleFees:   6600.00,
		Box12FeesPaid:       6600.00,
		Box13FeesReimbursed: 500.00,
		Box14EligibleAmount: 6100.00,
	}
}

func TestTransmissionRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransmissionRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	next, err := repo.NextSequenceNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	tr := testTransmissionRow(2025, 1)
	require.NoError(t, repo.Create(ctx, tr))
	require.NotZero(t, tr.ID)

	got, err := repo.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.UUID, got.UUID)
	assert.Equal(t, 1, got.SequenceNumber)
	assert.Equal(t, entity.TransmissionOriginal, got.TransmissionType)
	assert.Equal(t, "1234567890", got.Provider.NEQ)
	assert.True(t, got.ValidationClean)

	next, err = repo.NextSequenceNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	// Sequences are allocated per tax year
	next, err = repo.NextSequenceNumber(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestTransmissionRepository_SequenceConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransmissionRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testTransmissionRow(2025, 1)))

	err := repo.Create(ctx, testTransmissionRow(2025, 1))
	assert.ErrorIs(t, err, port.ErrSequenceConflict)

	// A different tax year may reuse the sequence number
	require.NoError(t, repo.Create(ctx, testTransmissionRow(2024, 1)))
}

func TestTransmissionRepository_ConcurrentCreates(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransmissionRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	// Both writers race through the allocate-then-insert pattern the batch
	// processor uses; the UNIQUE constraint must force the loser onto a
	// fresh sequence number.
	const writers = 2
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attempt := 0; attempt < 5; attempt++ {
				seq, err := repo.NextSequenceNumber(ctx, 2025)
				if err != nil {
					errs <- err
					return
				}
				err = repo.Create(ctx, testTransmissionRow(2025, seq))
				if err == port.ErrSequenceConflict {
					continue
				}
				errs <- err
				return
			}
			errs <- port.ErrSequenceConflict
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := repo.ListByTaxYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, rows, writers)

	seen := make(map[int]bool)
	for _, tr := range rows {
		assert.False(t, seen[tr.SequenceNumber], "sequence %d allocated twice", tr.SequenceNumber)
		seen[tr.SequenceNumber] = true
	}
}

func TestSlipRepository_NumbersContinueAcrossTransmissions(t *testing.T) {
	db := newTestDB(t)
	transmissionRepo := NewTransmissionRepository(db.DB, zap.NewNop())
	slipRepo := NewSlipRepository(db.DB, zap.NewNop())
	eligibilityRepo := NewEligibilityRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	rec := testEligibilityRow()
	require.NoError(t, eligibilityRepo.Create(ctx, rec))

	next, err := slipRepo.NextSlipNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	first := testTransmissionRow(2025, 1)
	require.NoError(t, transmissionRepo.Create(ctx, first))
	require.NoError(t, slipRepo.Create(ctx, testSlipRow(first.ID, rec.ID, "1")))
	require.NoError(t, slipRepo.Create(ctx, testSlipRow(first.ID, rec.ID, "2")))

	next, err = slipRepo.NextSlipNumber(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	second := testTransmissionRow(2025, 2)
	require.NoError(t, transmissionRepo.Create(ctx, second))
	amendment := testSlipRow(second.ID, rec.ID, "3")
	amendment.SlipType = entity.SlipAmended
	amendment.PreviousSlipNumber = "2"
	require.NoError(t, slipRepo.Create(ctx, amendment))

	// Number "1" still resolves to the slip of the first transmission
	got, err := slipRepo.FindBySlipNumber(ctx, 2025, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.TransmissionID)
	assert.Equal(t, entity.SlipOriginal, got.SlipType)

	got, err = slipRepo.FindBySlipNumber(ctx, 2025, "3")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.TransmissionID)
	assert.Equal(t, "2", got.PreviousSlipNumber)

	_, err = slipRepo.FindBySlipNumber(ctx, 2025, "99")
	assert.ErrorIs(t, err, port.ErrNotFound)
}
