package models

import (
	"time"
)

// Upload represents an uploaded passport image tied to a profile.
type Upload struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string  `gorm:"size:255;not null"`
	StorePath   string  `gorm:"column:store_path;size:512"` // public relative path (e.g. public/passports/xxx.jpg)
	ProfileID   uint    `gorm:"index;not null"`
	Profile     Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ContentType string  `gorm:"size:128"`
	ScanID      *uint   `gorm:"index"` // FK to passport_scans.id (nullable until OCR succeeds)
	// Mark upload as failed for MRZ processing (record kept so the owner or
	// an admin can review and retry)
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
