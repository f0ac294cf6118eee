package importer

// CommitRow is one user-confirmed row handed back for commit: the raw
// values from the preview, the action the user settled on, and the
// duplicate match the preview reported, if any.
type CommitRow struct {
	Values         map[string]string `json:"values"`
	Action         Action            `json:"action"`
	DuplicateMatch *DuplicateMatch   `json:"duplicate_match,omitempty"`
}

// CommitResult aggregates what a commit did. Counters are purely
// additive; there is no ordering requirement between them.
type CommitResult struct {
	CreatedTasks    int `json:"created_tasks"`
	UpdatedTasks    int `json:"updated_tasks"`
	CreatedProjects int `json:"created_projects"`
	UpdatedProjects int `json:"updated_projects"`
	CreatedNotes    int `json:"created_notes"`
	Skipped         int `json:"skipped"`
}

// Changed reports whether the commit created or updated anything. The
// per-source import counter is only bumped for commits that changed
// something.
func (r CommitResult) Changed() bool {
	return r.CreatedTasks+r.UpdatedTasks+r.CreatedProjects+r.UpdatedProjects+r.CreatedNotes > 0
}
