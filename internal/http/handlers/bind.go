package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError reports one invalid request field by its json name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds the body into out and writes the failure response itself
// when binding fails. Callers just return on false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError

	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large", nil)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))

	return false
}

func bindErrorDetails(err error, out interface{}) interface{} {
	var (
		validationErrs validator.ValidationErrors
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErrs):
		return gin.H{"fields": fieldErrors(validationErrs, requestType(out))}

	case errors.As(err, &syntaxErr):
		return gin.H{"json": "invalid_json_syntax"}

	case errors.As(err, &typeErr):
		return gin.H{
			"json":  "invalid_json_type",
			"field": typeErr.Field,
			"fields": []FieldError{{
				Field:   typeErr.Field,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func fieldErrors(errs validator.ValidationErrors, reqType reflect.Type) []FieldError {
	out := make([]FieldError, 0, len(errs))

	for _, fe := range errs {
		out = append(out, FieldError{
			Field:   jsonName(reqType, fe.StructField()),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: ruleMessage(fe.Tag(), fe.Param()),
		})
	}

	return out
}

func requestType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

// jsonName resolves a struct field to its json tag. Request structs here
// are flat, so no nested path walking is needed.
func jsonName(reqType reflect.Type, structField string) string {
	if reqType == nil {
		return structField
	}

	sf, ok := reqType.FieldByName(structField)

	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if name == "" || name == "-" {
		return structField
	}

	return name
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	}

	if param != "" {
		return "failed " + rule + " validation (" + param + ")"
	}

	return "failed " + rule + " validation"
}
