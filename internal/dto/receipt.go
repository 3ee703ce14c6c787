package dto

import "time"

// ReceiptCandidatesQuery filters the events offered for a year-end receipt.
type ReceiptCandidatesQuery struct {
	Year    int    `form:"year" validate:"omitempty,min=2000,max=2100"`
	Quarter string `form:"quarter" validate:"omitempty,oneof=all Q1 Q2 Q3 Q4"`
	Keyword string `form:"q" validate:"max=100"`
}

// ReceiptCandidate is an event the visitor may mark as attended.
type ReceiptCandidate struct {
	ID        string `json:"id"`
	EventName string `json:"event_name"`
	Schedule  string `json:"schedule"`
	DateLabel string `json:"date_label"`
	Location  string `json:"location,omitempty"`
	Quarter   string `json:"quarter"`
}

// CreateReceiptRequest renders a receipt for the selected events.
type CreateReceiptRequest struct {
	Year     int      `json:"year" validate:"omitempty,min=2000,max=2100"`
	EventIDs []string `json:"event_ids" validate:"required,min=1,max=500,dive,required"`
	Name     string   `json:"name" validate:"required,max=40"`
	Role     string   `json:"role" validate:"omitempty,oneof=Listener Otagei DJ VJ Organizer"`
	Format   string   `json:"format" validate:"required,oneof=pdf csv"`
}

// ReceiptResponse points at a rendered receipt.
type ReceiptResponse struct {
	ReceiptID   string    `json:"receipt_id"`
	Year        int       `json:"year"`
	Format      string    `json:"format"`
	TotalEvents int       `json:"total_events"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
