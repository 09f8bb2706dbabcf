package model

// GraphExport is a read-only snapshot of a linking session.
type GraphExport struct {
	Entities []ExportedEntity `json:"entities"`
	Links    []Link           `json:"links"`
}

// Community is a cluster of connected canonical entities, used by reports.
type Community struct {
	Members []ExportedEntity `json:"members"`
}
