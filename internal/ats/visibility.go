package ats

import (
	"time"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ShouldAppear reports whether a job belongs in the public listing.
func ShouldAppear(job *db.Job) bool {
	return job != nil && job.Status == types.JobOpen && job.Visible
}

// IsLive reports whether a listed job has reached its publish time at now. Only
// live jobs are readable by non-staff and accept applications.
func IsLive(job *db.Job, now time.Time) bool {
	return ShouldAppear(job) && (job.PublishAt == nil || !job.PublishAt.After(now))
}

// PlanPublicView computes the writes that move the public listing from the state
// implied by before to the state implied by after. Either side may be nil (job
// created or deleted).
//
// The listing is keyed by (status, visible, publish_at, job_id), so a change to
// any key field cannot be written in place: the old row is deleted and a new one
// inserted.
func PlanPublicView(before, after *db.Job) []db.PublicViewOp {
	was, is := ShouldAppear(before), ShouldAppear(after)

	switch {
	case was && is:
		if sameKey(before.PublicKey(), after.PublicKey()) {
			return []db.PublicViewOp{{Kind: db.PublicViewUpsert, Key: after.PublicKey(), Row: after.PublicRow()}}
		}
		return []db.PublicViewOp{
			{Kind: db.PublicViewDelete, Key: before.PublicKey()},
			{Kind: db.PublicViewInsert, Key: after.PublicKey(), Row: after.PublicRow()},
		}
	case was:
		return []db.PublicViewOp{{Kind: db.PublicViewDelete, Key: before.PublicKey()}}
	case is:
		return []db.PublicViewOp{{Kind: db.PublicViewInsert, Key: after.PublicKey(), Row: after.PublicRow()}}
	}
	return nil
}

func sameKey(a, b db.PublicJobKey) bool {
	return a.Status == b.Status &&
		a.Visible == b.Visible &&
		a.PublishAt.Equal(b.PublishAt) &&
		a.JobID == b.JobID
}
