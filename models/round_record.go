package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoundRecordKey is the primary key of the single state row.
const RoundRecordKey = "current"

// RoundRecord stores the RoundState document in a relational database.
type RoundRecord struct {
	ID        string         `gorm:"primaryKey;size:32"`
	Round     int            // mirrored from the document for ad hoc queries
	State     datatypes.JSON // the RoundState document
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RoundRecord) TableName() string { return "round_states" }
