package models

import "time"

// NotificationEvent selects the mail template used for a deck notification.
type NotificationEvent string

const (
	EventPickedUp NotificationEvent = "PICKED_UP"
	EventDropped  NotificationEvent = "DROPPED"
	EventReminder NotificationEvent = "REMINDER"
	EventAssigned NotificationEvent = "ASSIGNED"
)

// Valid reports whether e is a known event.
func (e NotificationEvent) Valid() bool {
	switch e {
	case EventPickedUp, EventDropped, EventReminder, EventAssigned:
		return true
	}
	return false
}

// EmailTemplate is a Handlebars subject/body pair; one per event.
type EmailTemplate struct {
	ID           string            `db:"id" json:"id"`
	TemplateName string            `db:"template_name" json:"templateName"`
	Category     NotificationEvent `db:"category" json:"templateFor"`
	Subject      string            `db:"subject" json:"subject"`
	HTML         string            `db:"html" json:"html"`
	CreatedAt    time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updatedAt"`
}

// SMTPSettings is the single stored mail account.
type SMTPSettings struct {
	EmailAddress  string    `db:"email_address" json:"emailAddress"`
	EmailPassword string    `db:"email_password" json:"-"`
	SMTPHost      string    `db:"smtp_host" json:"smtpHost"`
	SMTPPort      int       `db:"smtp_port" json:"smtpPort"`
	SMTPSecure    bool      `db:"smtp_secure" json:"smtpSecure"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// School is a catalogue entry used by deck forms.
type School struct {
	ID         string    `db:"id" json:"id"`
	SchoolName string    `db:"school_name" json:"schoolName"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
