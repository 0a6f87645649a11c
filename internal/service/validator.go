package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kdos/folio/internal/domain"
)

// emailPattern accepts anything shaped like local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks documents and messages before they are persisted or sent.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return strings.ToLower(field.Name)
		default:
			return name
		}
	})

	// Registration only fails for an empty tag or nil function.
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// ValidateSkills checks field constraints and that category IDs are unique.
func (v *Validator) ValidateSkills(doc *domain.SkillsDocument) error {
	if err := v.validate.Struct(doc); err != nil {
		return validationError(err, "")
	}

	seen := make(map[string]int, len(doc.Categories))
	for i, category := range doc.Categories {
		if first, ok := seen[category.ID]; ok {
			return fmt.Errorf("%w: categories[%d].id %q duplicates categories[%d].id", domain.ErrValidation, i, category.ID, first)
		}
		seen[category.ID] = i
	}
	return nil
}

// ValidateProjects checks field constraints of every project and that IDs are unique.
func (v *Validator) ValidateProjects(projects []domain.Project) error {
	seen := make(map[string]int, len(projects))
	for i := range projects {
		if err := v.validate.Struct(&projects[i]); err != nil {
			return validationError(err, fmt.Sprintf("[%d]", i))
		}
		if first, ok := seen[projects[i].ID]; ok {
			return fmt.Errorf("%w: [%d].id %q duplicates [%d].id", domain.ErrValidation, i, projects[i].ID, first)
		}
		seen[projects[i].ID] = i
	}
	return nil
}

// ValidateContact returns domain.ErrContactFieldsMissing when any field is
// empty and domain.ErrInvalidEmail when the address is malformed.
func (v *Validator) ValidateContact(msg domain.ContactMessage) error {
	err := v.validate.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return domain.ErrContactFieldsMissing
		}
	}
	return domain.ErrInvalidEmail
}

// validationError flattens validator errors into a single ErrValidation.
// prefix replaces the root struct name in field paths.
func validationError(err error, prefix string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		if prefix != "" {
			path = prefix + "." + path
		}
		msgs = append(msgs, path+" "+describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
