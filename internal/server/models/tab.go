package models

import "time"

// TabRecord identifies one stored tablature file. Size and DateAdded are
// derived from the filesystem when the record is built, not persisted
// separately.
type TabRecord struct {
	ID               string
	OriginalFilename string
	Extension        string
	StoredName       string
	Size             int64
	DateAdded        time.Time
}
