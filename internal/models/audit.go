package models

import "time"

// Audited actions.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionDeckStatus     = "DECK_STATUS"
	AuditActionDeckBulkStatus = "DECK_BULK_STATUS"
	AuditActionDeckCount      = "DECK_COUNT"
	AuditActionDeckCreate     = "DECK_CREATE"
	AuditActionDeckUpdate     = "DECK_UPDATE"
	AuditActionDeckUpload     = "DECK_UPLOAD"
	AuditActionDeckPurge      = "DECK_PURGE"
	AuditActionTemplateSave   = "TEMPLATE_SAVE"
	AuditActionSMTPSave       = "SMTP_SAVE"
	AuditActionSchoolCreate   = "SCHOOL_CREATE"
	AuditActionMailTrigger    = "MAIL_TRIGGER"
)

// AuditLog is one recorded administrative action.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
