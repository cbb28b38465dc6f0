// internal/models/audit_log.go
package models

import "time"

type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Action       string    `json:"action" gorm:"size:255;not null"`
	ResourceType string    `json:"resource_type" gorm:"size:50"`
	ResourceID   string    `json:"resource_id,omitempty" gorm:"size:64"`
	IPAddress    string    `json:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"type:text"`
	Status       int       `json:"status"`
	RequestID    string    `json:"request_id" gorm:"size:36"`
	NewValues    JSONB     `json:"new_values" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"created_at"`
}
