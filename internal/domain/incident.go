package domain

// Incident is the validated, canonical form of an incoming incident
// request. It is owned by a single request and never persisted.
type Incident struct {
	NitTransp      string
	ContactName    string
	ClientEmail    string
	Description    string
	SubjectName    string
	PhoneUser      string
	FilesURLs      string
	CodProduct     string
	IDProject      string
	ConversationID string
}

// HasConversation reports whether the incident references a chat
// conversation whose attachments should be collected.
func (i Incident) HasConversation() bool {
	return i.ConversationID != ""
}

// IsEmpty reports whether the request carried no usable fields at all.
func (i Incident) IsEmpty() bool {
	return i == Incident{}
}
