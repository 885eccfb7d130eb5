package dto

// BranchCount is a per-branch student tally.
type BranchCount struct {
	Branch string `json:"branch"`
	Count  int    `json:"count"`
}

// DashboardStats aggregates the institution dashboard numbers. Cached per
// institution with a short TTL.
type DashboardStats struct {
	TotalStudents         int           `json:"total_students"`
	PaidStudents          int           `json:"paid_students"`
	UnpaidStudents        int           `json:"unpaid_students"`
	TotalEmployees        int           `json:"total_employees"`
	PendingChangeRequests int           `json:"pending_change_requests"`
	StudentsByBranch      []BranchCount `json:"students_by_branch"`
}
