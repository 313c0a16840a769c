package db

// RepairReport counts the rows the reconciler touched.
type RepairReport struct {
	CandidateRowsInserted int `json:"candidate_rows_inserted"`
	PairRowsInserted      int `json:"pair_rows_inserted"`
	RecentRowsInserted    int `json:"recent_rows_inserted"`
	StatusRowsFixed       int `json:"status_rows_fixed"`
	RecruiterRowsFixed    int `json:"recruiter_rows_fixed"`
	TitleRowsFixed        int `json:"title_rows_fixed"`
	OrphanRowsDeleted     int `json:"orphan_rows_deleted"`
	OrphanRoundsDeleted   int `json:"orphan_rounds_deleted"`
	PublicRowsDeleted     int `json:"public_rows_deleted"`
	PublicRowsInserted    int `json:"public_rows_inserted"`
}

// Add folds other into r.
func (r *RepairReport) Add(other RepairReport) {
	r.CandidateRowsInserted += other.CandidateRowsInserted
	r.PairRowsInserted += other.PairRowsInserted
	r.RecentRowsInserted += other.RecentRowsInserted
	r.StatusRowsFixed += other.StatusRowsFixed
	r.RecruiterRowsFixed += other.RecruiterRowsFixed
	r.TitleRowsFixed += other.TitleRowsFixed
	r.OrphanRowsDeleted += other.OrphanRowsDeleted
	r.OrphanRoundsDeleted += other.OrphanRoundsDeleted
	r.PublicRowsDeleted += other.PublicRowsDeleted
	r.PublicRowsInserted += other.PublicRowsInserted
}

// Total is the number of rows changed.
func (r RepairReport) Total() int {
	return r.CandidateRowsInserted + r.PairRowsInserted + r.RecentRowsInserted +
		r.StatusRowsFixed + r.RecruiterRowsFixed + r.TitleRowsFixed + r.OrphanRowsDeleted + r.OrphanRoundsDeleted +
		r.PublicRowsDeleted + r.PublicRowsInserted
}
