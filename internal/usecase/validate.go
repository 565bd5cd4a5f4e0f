package usecase

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolio-site/internal/domain"
)

var submissionValidator = newSubmissionValidator()

var fieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"subject": "Subject",
	"message": "Message",
}

func newSubmissionValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func normalizeSubmission(in domain.ContactSubmission) domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		// Inner newlines are kept; they become line breaks in the emails.
		Message: strings.TrimSpace(in.Message),
	}
}

// validateSubmission returns a message per invalid field, or nil.
func validateSubmission(in domain.ContactSubmission) map[string]string {
	err := submissionValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"submission": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = label + " is required"
		case "email":
			fields[fe.Field()] = "Email is invalid"
		default:
			fields[fe.Field()] = label + " is invalid"
		}
	}
	return fields
}
