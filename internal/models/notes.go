package models

import "time"

// Topic is a user-owned container for entries.
type Topic struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	DateAdded time.Time `json:"date_added"`
	OwnerID   string    `json:"owner_id"`
}

// Entry is a timestamped note under a topic. Its owner is always the topic's
// owner, never the user who happened to submit the form. DateAdded is set at
// creation and refreshed when an edit is saved.
type Entry struct {
	ID             string    `json:"id"`
	TopicID        string    `json:"topic_id"`
	Text           string    `json:"text"`
	DateAdded      time.Time `json:"date_added"`
	OwnerID        string    `json:"owner_id"`
	AttachmentKey  string    `json:"-"`
	AttachmentName string    `json:"attachment_name,omitempty"`
}
