package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestJobPublicRow(t *testing.T) {
	publish := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	lo, hi := 90000, 120000
	job := Job{
		ID:          uuid.New(),
		RecruiterID: uuid.New(),
		Title:       "Data Engineer",
		Level:       "senior",
		SalaryMin:   &lo,
		SalaryMax:   &hi,
		Currency:    "EUR",
		Status:      types.JobOpen,
		Visible:     true,
		PublishAt:   &publish,
	}

	row := job.PublicRow()
	assert.Equal(t, PublicJobKey{Status: types.JobOpen, Visible: true, PublishAt: publish, JobID: job.ID}, row.PublicJobKey)
	assert.Equal(t, "Data Engineer", row.Title)
	assert.Equal(t, job.RecruiterID, row.RecruiterID)
	assert.Equal(t, &lo, row.SalaryMin)
	assert.Equal(t, row.PublicJobKey, job.PublicKey())
}

func TestPublicViewOpKind_String(t *testing.T) {
	assert.Equal(t, "upsert", PublicViewUpsert.String())
	assert.Equal(t, "insert", PublicViewInsert.String())
	assert.Equal(t, "delete", PublicViewDelete.String())
	assert.Equal(t, "unknown", PublicViewOpKind(0).String())
}

func TestRepairReport(t *testing.T) {
	r := RepairReport{CandidateRowsInserted: 1, StatusRowsFixed: 2}
	r.Add(RepairReport{PublicRowsDeleted: 3, StatusRowsFixed: 1})
	assert.Equal(t, 3, r.StatusRowsFixed)
	assert.Equal(t, 7, r.Total())
	r.Add(RepairReport{RecruiterRowsFixed: 1, TitleRowsFixed: 2})
	assert.Equal(t, 1, r.RecruiterRowsFixed)
	assert.Equal(t, 10, r.Total())
	assert.Zero(t, RepairReport{}.Total())
}
