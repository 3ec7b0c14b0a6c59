package types

import "time"

// PackageCollection is an immutable, append-only record of a package set
// at a given version within a URI scope. Created once, never updated.
type PackageCollection struct {
	Version   string    `json:"version" bson:"version"`
	Packages  []string  `json:"packages" bson:"packages"`
	Herit     string    `json:"herit" bson:"herit"`
	Tools     []string  `json:"tools" bson:"tools"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	URI       string    `json:"uri" bson:"uri"`
}

// Stage is a named, versioned pointer into a URI scope. At most one stage
// per (name, uri) is active at a time; the ID is assigned by storage on
// insert and is empty before persistence.
type Stage struct {
	ID          string    `json:"id,omitempty" bson:"-"`
	Name        string    `json:"name" bson:"name"`
	URI         string    `json:"uri" bson:"uri"`
	FromVersion string    `json:"from_version" bson:"from_version"`
	Snapshot    []byte    `json:"snapshot,omitempty" bson:"snapshot"`
	Tools       []string  `json:"tools" bson:"tools"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	CreatedBy   string    `json:"created_by" bson:"created_by"`
	Active      bool      `json:"active" bson:"active"`
}

// Key returns the (name, uri) grouping key the single-active invariant
// is scoped to.
func (s *Stage) Key() string {
	return s.Name + "\x00" + s.URI
}
