package middleware

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// paymentMethodPattern accepts a well-formed method name. Whether the
// method is supported is decided at checkout, so "paypal" binds and is
// rejected there as UNSUPPORTED_PAYMENT_METHOD.
var paymentMethodPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z_]{0,31}$`)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors
// and the payment_method rule. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			return paymentMethodPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

// fixedMessages covers tags whose message does not depend on the parameter
var fixedMessages = map[string]string{
	"required":       "This field is required",
	"email":          "Invalid email format",
	"uuid":           "Invalid UUID format",
	"url":            "Invalid URL format",
	"hexcolor":       "Must be a hex color such as #1a2b3c",
	"payment_method": "Invalid payment method",
}

// ValidationDetails lists the failed fields of a binding error. It returns
// nil when err did not come from the validator, e.g. malformed JSON.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit
	case "max":
		return "Must be at most " + fe.Param() + unit
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return "Invalid value"
}
