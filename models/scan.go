package models

import "time"

// PassportScan holds the normalized result of reading one passport image.
// Date fields store the resolved display values (DD/MM/YYYY or the
// "Invalid date" sentinel); the raw zone lines are kept for re-processing.
type PassportScan struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null;uniqueIndex:idx_user_file"`
	FileName  string `gorm:"size:255;not null;uniqueIndex:idx_user_file"`

	DocumentType   string `gorm:"size:8"`
	Country        string `gorm:"size:8;index"`
	Number         string `gorm:"size:16"`
	BirthDate      string `gorm:"size:16"`
	ExpirationDate string `gorm:"size:16"`
	Nationality    string `gorm:"size:8"`
	Gender         string `gorm:"size:8"`
	FullName       string `gorm:"size:255"`
	Surname        string `gorm:"size:255"`

	MRZLine1   string  `gorm:"size:48"`
	MRZLine2   string  `gorm:"size:48"`
	Confidence float64 `gorm:"not null;default:0"`
	ScannedAt  time.Time
}
