package git

import "time"

// Author represents Git author information
type Author struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// Commit is the slice of a Git commit the harvester needs.
type Commit struct {
	Hash           string `json:"hash"`
	ShortHash      string `json:"short_hash"` // First 8 chars for display
	Author         Author `json:"author"`
	MessageSubject string `json:"message_subject"` // First line of message
	MessageBody    string `json:"message_body"`    // Rest of message
	IsMerge        bool   `json:"is_merge"`
}
