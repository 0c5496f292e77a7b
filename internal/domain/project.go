package domain

// Project is read-only reference data resolved lazily by identifier.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
}
