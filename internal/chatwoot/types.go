package chatwoot

// ConversationResponse is the messages-list payload returned by the
// chat platform.
type ConversationResponse struct {
	Payload []Message `json:"payload"`
	Meta    *Meta     `json:"meta,omitempty"`
}

// Meta carries the platform's pagination counters.
type Meta struct {
	Count       int `json:"count"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// Message is one conversation message, possibly carrying attachments.
type Message struct {
	ID          int64        `json:"id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a typed file reference on a message. Only references
// whose FileType is "image" are ever downloaded.
type Attachment struct {
	ID       int64  `json:"id"`
	FileType string `json:"file_type"`
	DataURL  string `json:"data_url,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
