package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

func TestCreateRecordDefaultsToPending(t *testing.T) {
	repo := newMockEligibilityRepo()
	svc := NewEligibilityService(repo, nopLogger{})

	rec := testRecord(0, 100, 3000, 3000, 0)
	rec.Status = ""
	require.NoError(t, svc.CreateRecord(context.Background(), rec))
	assert.Equal(t, entity.EligibilityPending, rec.Status)
}

func TestCreateRecordRejectsBadTaxYear(t *testing.T) {
	repo := newMockEligibilityRepo()
	svc := NewEligibilityService(repo, nopLogger{})

	rec := testRecord(0, 100, 3000, 3000, 0)
	rec.TaxYear = 1999
	assert.Error(t, svc.CreateRecord(context.Background(), rec))
}

func TestUpdateStatusMovesUnslippedRecord(t *testing.T) {
	repo := newMockEligibilityRepo()
	svc := NewEligibilityService(repo, nopLogger{})

	rec := testRecord(1, 100, 3000, 3000, 0)
	rec.Status = entity.EligibilityPending
	repo.add(rec)

	updated, err := svc.UpdateStatus(context.Background(), 1, entity.EligibilityApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.EligibilityApproved, updated.Status)
	assert.Equal(t, entity.EligibilityApproved, repo.statuses[1])
}

func TestUpdateStatusFreezesSlippedRecord(t *testing.T) {
	repo := newMockEligibilityRepo()
	svc := NewEligibilityService(repo, nopLogger{})

	rec := testRecord(1, 100, 3000, 3000, 0)
	transmissionID := int64(7)
	rec.TransmissionID = &transmissionID
	repo.add(rec)

	_, err := svc.UpdateStatus(context.Background(), 1, entity.EligibilityRejected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amendment")
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newMockEligibilityRepo()
	svc := NewEligibilityService(repo, nopLogger{})

	_, err := svc.UpdateStatus(context.Background(), 1, entity.EligibilityStatus("ARCHIVED"))
	assert.Error(t, err)
}

func TestDeleteRecordGuard(t *testing.T) {
	tests := []struct {
		status  entity.EligibilityStatus
		allowed bool
	}{
		{entity.EligibilityPending, true},
		{entity.EligibilityIncomplete, true},
		{entity.EligibilityApproved, false},
		{entity.EligibilityRejected, false},
	}

	for _, tt := range tests {
		repo := newMockEligibilityRepo()
		svc := NewEligibilityService(repo, nopLogger{})

		rec := testRecord(1, 100, 3000, 3000, 0)
		rec.Status = tt.status
		repo.add(rec)

		err := svc.DeleteRecord(context.Background(), 1)
		if tt.allowed {
			require.NoError(t, err, "status %s", tt.status)
			assert.Contains(t, repo.deleted, int64(1))
		} else {
			assert.Error(t, err, "status %s", tt.status)
		}
	}
}
