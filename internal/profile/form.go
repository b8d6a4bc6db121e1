package profile

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the career profile a user fills in or a resume pre-fills.
type Form struct {
	Field      string `json:"field" form:"field" validate:"required"`
	Skills     string `json:"skills" form:"skills" validate:"required"`
	Interests  string `json:"interests" form:"interests"`
	Experience string `json:"experience" form:"experience"`
	Education  string `json:"education" form:"education"`
	Goals      string `json:"goals" form:"goals"`
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid profile")

// ValidationError reports the first required field left empty.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	fieldLabels = map[string]string{
		"Field":  "Field of Study / Career Interest",
		"Skills": "Your Skills",
	}
)

// Validate checks that the required fields carry non-blank text.
func Validate(f Form) error {
	if err := validate.Struct(f.Trimmed()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			name := verrs[0].StructField()
			label := fieldLabels[name]
			if label == "" {
				label = name
			}
			return &ValidationError{Field: name, Message: label + " is required"}
		}
		return err
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Field:      strings.TrimSpace(f.Field),
		Skills:     strings.TrimSpace(f.Skills),
		Interests:  strings.TrimSpace(f.Interests),
		Experience: strings.TrimSpace(f.Experience),
		Education:  strings.TrimSpace(f.Education),
		Goals:      strings.TrimSpace(f.Goals),
	}
}

// IsZero reports whether every field is empty.
func (f Form) IsZero() bool {
	return f == Form{}
}

// Partial mirrors Form with optional fields, as returned by resume extraction.
type Partial struct {
	Field      *string `json:"field,omitempty"`
	Skills     *string `json:"skills,omitempty"`
	Interests  *string `json:"interests,omitempty"`
	Experience *string `json:"experience,omitempty"`
	Education  *string `json:"education,omitempty"`
	Goals      *string `json:"goals,omitempty"`
}

// Form fills absent fields with empty strings.
func (p Partial) Form() Form {
	return Form{
		Field:      deref(p.Field),
		Skills:     deref(p.Skills),
		Interests:  deref(p.Interests),
		Experience: deref(p.Experience),
		Education:  deref(p.Education),
		Goals:      deref(p.Goals),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
