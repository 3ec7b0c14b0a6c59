package types

// SaveCollectionRequest represents a save-collection request
type SaveCollectionRequest struct {
	Version   string   `json:"version" binding:"required"`
	Packages  []string `json:"packages" binding:"required"`
	Herit     string   `json:"herit"`
	Tools     []string `json:"tools"`
	CreatedBy string   `json:"created_by"`
	URI       string   `json:"uri" binding:"required"`
}

// SaveStageRequest represents a save-stage request; saving triggers
// snapshot generation before anything is written.
type SaveStageRequest struct {
	Name        string `json:"name" binding:"required"`
	URI         string `json:"uri" binding:"required"`
	FromVersion string `json:"from_version" binding:"required"`
	CreatedBy   string `json:"created_by"`
}

// CollectionsResult wraps collection queries for the shell UI
type CollectionsResult struct {
	Success     bool                `json:"success"`
	Message     *string             `json:"message,omitempty"`
	Collections []PackageCollection `json:"collections,omitempty"`
}

// Event is a lifecycle notification broadcast to stream subscribers
type Event struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	URI   string `json:"uri,omitempty"`
	Stage string `json:"stage_id,omitempty"`
	At    int64  `json:"timestamp"`
}
