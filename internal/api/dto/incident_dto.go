package dto

import (
	"github.com/spec-kit/incident-bridge/internal/domain"
)

// CreateIncidentRequest is the inbound incident payload.
type CreateIncidentRequest struct {
	NitTransp      string `json:"nit_transp"`
	ContactName    string `json:"contact_name"`
	ClientEmail    string `json:"client_email"`
	Description    string `json:"description"`
	SubjectName    string `json:"subject_name"`
	PhoneUser      string `json:"phone_user"`
	FilesURLs      string `json:"files_urls,omitempty"`
	CodProduct     string `json:"cod_product,omitempty"`
	IDProject      string `json:"id_project,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ToDomain maps the request onto the domain incident.
func (r CreateIncidentRequest) ToDomain() domain.Incident {
	return domain.Incident{
		NitTransp:      r.NitTransp,
		ContactName:    r.ContactName,
		ClientEmail:    r.ClientEmail,
		Description:    r.Description,
		SubjectName:    r.SubjectName,
		PhoneUser:      r.PhoneUser,
		FilesURLs:      r.FilesURLs,
		CodProduct:     r.CodProduct,
		IDProject:      r.IDProject,
		ConversationID: r.ConversationID,
	}
}

// IncidentResponse is the discriminated-union response body. Both the
// ok and classified-error branches are returned with HTTP 200.
type IncidentResponse struct {
	Status         string   `json:"status"`
	TaskID         string   `json:"task_id,omitempty"`
	Message        string   `json:"message,omitempty"`
	Code           string   `json:"code,omitempty"`
	OetCode        string   `json:"oet_code,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	RetryAvailable *bool    `json:"retry_available,omitempty"`
}

// FromSubmissionResult maps the typed result onto the wire response.
func FromSubmissionResult(result domain.SubmissionResult) IncidentResponse {
	resp := IncidentResponse{
		Status:  string(result.Status),
		TaskID:  result.TaskID,
		Message: result.Message,
		Code:    string(result.Code),
		OetCode: result.OetCode,
		Errors:  result.Errors,
	}
	if result.Status == domain.StatusOK {
		resp.Code = ""
	}
	if result.Code == domain.ErrService {
		retryable := result.Retryable
		resp.RetryAvailable = &retryable
	}
	return resp
}
