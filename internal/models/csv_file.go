package models

import (
	"time"
)

// CSVFile is the persisted export for one athlete. There is exactly one row
// per UserID; a new export replaces CSVData in place.
type CSVFile struct {
	UserID    string    `gorm:"primaryKey"     json:"userID"`
	CSVData   string    `gorm:"type:text"      json:"csvData"`
	CreatedAt time.Time `gorm:"not null"       json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`
}

// TableName overrides the table name used by CSVFile to `csv_files`
func (CSVFile) TableName() string {
	return "csv_files"
}
