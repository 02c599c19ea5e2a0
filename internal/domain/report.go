package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus tracks moderation of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// IsValid checks whether the status is known
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Report is a user's complaint about another profile
type Report struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReporterID int64        `json:"reporterId" gorm:"not null;index"`
	ReportedID int64        `json:"reportedId" gorm:"not null;index"`
	Reason     string       `json:"reason" gorm:"type:text;not null"`
	Status     ReportStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// TableName returns the table name for GORM
func (Report) TableName() string {
	return "reports"
}
