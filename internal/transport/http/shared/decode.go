package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
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

var ErrEmptyBody = errors.New("request body is empty")

// DecodeAndValidate reads a JSON body into dst and checks its validate tags.
// It writes the error response itself and reports whether the caller may
// continue.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			FailTooLarge(w, requestID)
		case errors.Is(err, io.EOF):
			FailValidation(w, requestID, []ValidationIssue{{Field: "body", Reason: ErrEmptyBody.Error()}})
		default:
			FailValidation(w, requestID, []ValidationIssue{{Field: "body", Reason: "invalid JSON payload"}})
		}
		return false
	}
	if issues := ValidateStruct(dst); len(issues) > 0 {
		FailValidation(w, requestID, issues)
		return false
	}
	return true
}

// ValidateStruct runs the struct tags and reports failures by JSON field name.
func ValidateStruct(v any) []ValidationIssue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationIssue{{Field: "body", Reason: err.Error()}}
	}
	v2 := NewValidator()
	for _, fe := range verrs {
		v2.Add(fieldPath(fe), reasonFor(fe))
	}
	return v2.Issues()
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a UUID"
	case "gtfield":
		return "must be after " + fe.Param()
	case "dive":
		return "contains an invalid entry"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func FailTooLarge(w http.ResponseWriter, requestID string) {
	FailValidation(w, requestID, []ValidationIssue{{Field: "body", Reason: "request body too large"}})
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
