package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/incident-bridge/internal/domain"
)

var (
	nitPattern   = regexp.MustCompile(`^[\d-]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s()-]+$`)
)

// IncidentValidator checks an incoming incident payload against the
// field rules expected by the ticketing backend. All violations are
// collected; validation never short-circuits on the first bad field.
type IncidentValidator struct {
	validate            *validator.Validate
	validateNitChecksum bool
}

// NewIncidentValidator builds the rule engine. When checksumPolicy is
// true the NIT check digit is verified on top of the format rules.
func NewIncidentValidator(checksumPolicy bool) *IncidentValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Errors are impossible here: the functions and tags are static.
	_ = v.RegisterValidation("nit_format", func(fl validator.FieldLevel) bool {
		return nitPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_format", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &IncidentValidator{validate: v, validateNitChecksum: checksumPolicy}
}

// incidentRules mirrors the inbound payload with the documented bounds.
type incidentRules struct {
	NitTransp      string `json:"nit_transp" validate:"required,min=5,max=50,nit_format"`
	ContactName    string `json:"contact_name" validate:"required,min=3,max=100"`
	ClientEmail    string `json:"client_email" validate:"required,email,max=100"`
	Description    string `json:"description" validate:"required,min=10,max=5000"`
	SubjectName    string `json:"subject_name" validate:"required,min=5,max=200"`
	PhoneUser      string `json:"phone_user" validate:"required,min=7,max=20,phone_format"`
	CodProduct     string `json:"cod_product" validate:"omitempty,numeric,max=50"`
	IDProject      string `json:"id_project" validate:"omitempty,numeric,max=50"`
	ConversationID string `json:"conversationId" validate:"omitempty,numeric,max=20"`
}

// Validate returns the canonical incident, or every rule violation as a
// human-readable message.
func (iv *IncidentValidator) Validate(in domain.Incident) (domain.Incident, []string) {
	rules := incidentRules{
		NitTransp:      in.NitTransp,
		ContactName:    in.ContactName,
		ClientEmail:    in.ClientEmail,
		Description:    in.Description,
		SubjectName:    in.SubjectName,
		PhoneUser:      in.PhoneUser,
		CodProduct:     in.CodProduct,
		IDProject:      in.IDProject,
		ConversationID: in.ConversationID,
	}

	var errs []string
	if err := iv.validate.Struct(rules); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				errs = append(errs, ruleMessage(fe))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if iv.validateNitChecksum && in.NitTransp != "" {
		if err := ValidateNit(in.NitTransp); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return domain.Incident{}, errs
	}

	out := in
	out.NitTransp = strings.TrimSpace(in.NitTransp)
	out.ContactName = strings.TrimSpace(in.ContactName)
	return out, nil
}

// ruleMessage translates a violated rule into the fixed wording the API
// has always returned.
func ruleMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s characters", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "nit_format":
		return fmt.Sprintf("%s must contain only digits and hyphens", field)
	case "phone_format":
		return fmt.Sprintf("%s has an invalid phone format", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
