package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/etuitionbd/server/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator engine and
// makes its errors report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || primitive.IsValidObjectID(s)
		})
	})
}

func jsonFieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return sf.Name
	}
	return name
}

func BindJSON(ctx *gin.Context, out interface{}) bool {
	RegisterValidators()

	err := ctx.ShouldBindJSON(out)

	if err != nil {
		msg, fields := parseBindError(err)
		RespondBadRequest(ctx, msg, fields)

		return false
	}

	return true
}

// ObjectIDParam parses a path parameter as an ObjectID and answers 400 when it is not one.
func ObjectIDParam(ctx *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(name))
	if err != nil {
		RespondBadRequest(ctx, "Invalid id", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseBindError(err error) (string, []FieldError) {
	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   fieldPath(fieldError),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return "Invalid request body", fields
	}

	if errors.Is(err, io.EOF) {
		return "Request body is required", nil
	}

	// money that does not fit the ledger
	if errors.Is(err, payment.ErrInvalidAmount) {
		return "Invalid amount", nil
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return "Malformed JSON", nil
	}

	// in the event of a type mismatch, Field is already the JSON path

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		return "Invalid request body", []FieldError{
			{
				Field:   unmatchedTypeError.Field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
			},
		}
	}

	// final fallback if the error could not be deciphered
	return "Invalid request body", nil
}

// fieldPath drops the root struct from a namespace like "CreateRequest.tuitionId".
func fieldPath(fieldError validator.FieldError) string {
	if _, path, ok := strings.Cut(fieldError.Namespace(), "."); ok && path != "" {
		return path
	}
	return fieldError.Field()
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "gt":
		return "must be greater than " + param
	case "objectid":
		return "must be a 24-character hex id"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
