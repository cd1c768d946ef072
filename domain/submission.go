package domain

import (
	stderrors "errors"
	"fmt"
	"sayit/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is a trimmed, validated pair ready for moderation.
type Submission struct {
	Content   string
	Recipient string
}

var validate = newValidator()

// Rules are registered rather than tagged so the limits come from MaxContentLength and MaxRecipientLength.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidationMapRules(map[string]string{
		"Content":   fmt.Sprintf("required,max=%d", MaxContentLength),
		"Recipient": fmt.Sprintf("required,max=%d", MaxRecipientLength),
	}, Submission{})
	return v
}

var violations = map[string]map[string]string{
	"Content": {
		"required": "Message cannot be empty",
		"max":      fmt.Sprintf("Message must be %d characters or less", MaxContentLength),
	},
	"Recipient": {
		"required": "Recipient field cannot be empty",
		"max":      fmt.Sprintf("Recipient name must be %d characters or less", MaxRecipientLength),
	},
}

var fieldNames = map[string]string{
	"Content":   "content",
	"Recipient": "recipient",
}

// NewSubmission trims both fields and checks them in the order
// content required, content length, recipient required, recipient length.
// Lengths are counted in characters, not bytes.
func NewSubmission(content, recipient string) (Submission, error) {
	s := Submission{
		Content:   strings.TrimSpace(content),
		Recipient: strings.TrimSpace(recipient),
	}
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return Submission{}, err
		}
		first := fieldErrs[0]
		return Submission{}, &errors.ValidationError{
			Field:      fieldNames[first.StructField()],
			Constraint: first.Tag(),
			Message:    violations[first.StructField()][first.Tag()],
		}
	}
	return s, nil
}
