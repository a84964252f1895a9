package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/tasktrack/domain"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest leaves email syntax to the auth service. Either field
// may arrive as an encrypted envelope and is opened before validation.
type ProfileUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Email *string `json:"email"`
}

// ProfileFields lists the profile fields a client may echo back encrypted.
var ProfileFields = []string{"name", "email"}

// Fields returns the present fields keyed by their JSON names.
func (r ProfileUpdateRequest) Fields() map[string]string {
	fields := make(map[string]string, 2)
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	return fields
}

// WithFields returns a copy with present fields replaced from fields.
func (r ProfileUpdateRequest) WithFields(fields map[string]string) ProfileUpdateRequest {
	if v, ok := fields["name"]; ok && r.Name != nil {
		r.Name = &v
	}
	if v, ok := fields["email"]; ok && r.Email != nil {
		r.Email = &v
	}
	return r
}

type TaskCreateRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type TaskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// ToPatch converts the request into a domain patch.
func (r TaskUpdateRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{Title: r.Title, Description: r.Description}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	if r.Priority != nil {
		p := domain.TaskPriority(*r.Priority)
		patch.Priority = &p
	}
	return patch
}

var validate = newValidator()

func newValidator() *validator.Validate {
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

// Decode unmarshals body into dst and runs its validation tags. Failures are
// domain validation errors carrying a caller-facing message.
func Decode(body []byte, dst any) error {
	if err := Unmarshal(body, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Unmarshal decodes the body without running validation tags.
func Unmarshal(body []byte, dst any) error {
	if len(body) == 0 {
		return domain.Invalid("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.Invalid("malformed JSON body")
	}
	return nil
}

// Validate runs the struct's validation tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domain.WrapError(domain.ErrCodeInvalid, describe(fieldErrs[0]), err)
	}
	return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "please provide a valid email"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return field + " is invalid"
	}
}
