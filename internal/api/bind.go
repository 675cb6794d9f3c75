package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailShapePattern is a deliberately simple "local@domain.tld" check,
// intentionally weaker than a full RFC 5322 validation. The same pattern
// gates the signup form client-side.
var emailShapePattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailShapeValidator implements the "emailshape" validation tag.
var EmailShapeValidator = func(fl validator.FieldLevel) bool {
	return emailShapePattern.MatchString(fl.Field().String())
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("emailshape", EmailShapeValidator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return fld.Name
	})
}

// BindJSON decodes the request body into v. On failure it records a 400
// error on the request state and returns false; the caller should return
// immediately.
func BindJSON(r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			SetError(r, ErrBadRequest.With("Request body too large"))
			return false
		}
		SetError(r, ErrBadRequest.With("Invalid request body"))
		return false
	}
	return true
}

// Validate runs struct tag validation on v and returns the field-level
// failures, using json tag names. Returns nil when v is valid.
func Validate(v any) validator.ValidationErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
