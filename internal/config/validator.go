package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// customValidation is a validator tag together with its English message.
type customValidation struct {
	tag     string
	fn      validator.Func
	message string
}

var customValidations = []customValidation{
	{tag: "file", fn: openableFile, message: "{0} must be an existing and readable file"},
	{tag: "origin", fn: corsOrigin, message: "{0} must be * or a scheme://host[:port] origin"},
}

// NewValidator returns the validator used for configuration and for RPC request messages.
// Field names in messages come from the mapstructure tag, then the json tag, then the Go name.
func NewValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("enTranslations.RegisterDefaultTranslations() > %w", err)
	}
	validate.RegisterTagNameFunc(fieldName)

	for _, cv := range customValidations {
		if err := validate.RegisterValidation(cv.tag, cv.fn); err != nil {
			return nil, nil, fmt.Errorf("validate.RegisterValidation(%s) > %w", cv.tag, err)
		}
		if err := validate.RegisterTranslation(cv.tag, trans, registerMessage(cv), translateField); err != nil {
			return nil, nil, fmt.Errorf("validate.RegisterTranslation(%s) > %w", cv.tag, err)
		}
	}
	return validate, trans, nil
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func registerMessage(cv customValidation) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(cv.tag, cv.message, true)
	}
}

func translateField(trans ut.Translator, fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	msg, err := trans.T(fe.Tag(), field)
	if err != nil {
		return fe.Error()
	}
	return msg
}

// openableFile reports whether the path names a regular file this process can open.
func openableFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	return err == nil && info.Mode().IsRegular()
}

func corsOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && (u.Path == "" || u.Path == "/") &&
		u.RawQuery == "" && u.Fragment == ""
}
