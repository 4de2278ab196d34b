package soap

import (
	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
)

// fallbackProjectID is submitted when neither the request nor the
// configuration names a project.
const fallbackProjectID = "1"

// Fields carries the wire-level field values the ticketing backend
// expects for its create-ticket operation.
type Fields struct {
	NomUsulog string
	PwdUsulog string
	NomUsuari string
	EmaUsuari string
	TexMessag string
	AsuMessag string
	TelUsuari string
	NitTransp string
	IDProject string
}

// BuildFields maps a validated incident and the configured credentials
// into backend field names. Pure; always succeeds for a validated
// incident.
func BuildFields(incident domain.Incident, cfg config.OetConfig) Fields {
	return Fields{
		NomUsulog: cfg.Username,
		PwdUsulog: cfg.Password,
		NomUsuari: incident.ContactName,
		EmaUsuari: incident.ClientEmail,
		TexMessag: incident.Description,
		AsuMessag: incident.SubjectName,
		TelUsuari: incident.PhoneUser,
		NitTransp: incident.NitTransp,
		IDProject: projectID(incident, cfg),
	}
}

func projectID(incident domain.Incident, cfg config.OetConfig) string {
	if incident.IDProject != "" {
		return incident.IDProject
	}
	if incident.CodProduct != "" {
		return incident.CodProduct
	}
	if cfg.DefaultProjectID != "" {
		return cfg.DefaultProjectID
	}
	return fallbackProjectID
}
