package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

type message struct {
	text   string
	params func(fe validator.FieldError) []string
}

func param(fe validator.FieldError) []string {
	return []string{fe.Param()}
}

func (v *Validator) messages() map[string]message {
	return map[string]message{
		"required": {text: "{0} is required"},
		"notblank": {text: "{0} is required"},
		"oneof": {text: "{0} must be one of: {1}", params: func(fe validator.FieldError) []string {
			return []string{strings.Join(strings.Fields(fe.Param()), ", ")}
		}},
		"datetime": {text: "{0} must be a date in YYYY-MM-DD format"},
		"gt":       {text: "{0} must be greater than {1}", params: param},
		"age":      {text: fmt.Sprintf("{0} must be between %d and %d", minAge, maxAge)},
		"count":    {text: "{0} must be a non-negative whole number"},
		"pastyear": {text: "{0} must be between {1} and {2}", params: func(validator.FieldError) []string {
			return []string{strconv.Itoa(minYear), strconv.Itoa(v.CurrentYear())}
		}},
	}
}

func (v *Validator) registerMessages() error {
	for tag, msg := range v.messages() {
		if err := v.validate.RegisterTranslation(tag, v.trans,
			func(trans ut.Translator) error {
				return trans.Add(tag, msg.text, true)
			},
			func(trans ut.Translator, fe validator.FieldError) string {
				params := []string{label(fe.Field())}
				if msg.params != nil {
					params = append(params, msg.params(fe)...)
				}
				t, err := trans.T(tag, params...)
				if err != nil {
					return fe.Error()
				}
				return t
			},
		); err != nil {
			return fmt.Errorf("registering message for %s: %w", tag, err)
		}
	}

	// min reads differently for text and numbers.
	return v.validate.RegisterTranslation("min", v.trans,
		func(trans ut.Translator) error {
			if err := trans.Add("min-string", "{0} must be at least {1} characters", true); err != nil {
				return err
			}
			return trans.Add("min-number", "{0} must be at least {1}", true)
		},
		func(trans ut.Translator, fe validator.FieldError) string {
			key := "min-number"
			if fe.Kind() == reflect.String {
				key = "min-string"
			}
			t, err := trans.T(key, label(fe.Field()), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}
