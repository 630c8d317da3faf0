package models

import "time"

type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

type OutboundMessage struct {
	From       string
	To         string
	Subject    string
	BodyText   string
	BodyHTML   string      //optional alternative rendering
	Attachment *Attachment //optional
}

// ApplicationRecord is the confirmation echoed back after a successful send.
// It is never persisted.
type ApplicationRecord struct {
	Company        string    `json:"company"`
	Vacancy        string    `json:"vacancy"`
	RecruiterEmail string    `json:"recruiter_email"`
	FileName       string    `json:"file_name"`
	SentAt         time.Time `json:"sent_at"`
}
