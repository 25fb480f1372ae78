// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "predictkit/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps a JSON body when Options.MaxBytes is zero
const DefaultMaxBytes int64 = 8 << 20

// Options tune ParseJSON
type Options struct {
	MaxBytes     int64
	AllowUnknown bool
}

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var shared = sync.OnceValue(func() *checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	short(v, trans, "min", "{0} must be at least {1}")
	short(v, trans, "max", "{0} must be at most {1}")
	return &checker{v: v, trans: trans}
})

// jsonName reports fields by their json key
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// ParseJSON reads one JSON value into T and validates its struct tags. Decode
// problems are JSON errors, tag failures are validation errors carrying the field
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var (
		zero T
		o    Options
	)
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if r.Body == nil {
		return zero, perr.JSONErrf("empty body")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, o.MaxBytes))
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}

	var out T
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(out); err != nil {
		return zero, err
	}
	return out, nil
}

// Validate checks v's struct tags; only the first failing field is reported
func Validate(v any) error {
	c := shared()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(c.trans)), fe.Field())
	}
	// non-struct input
	return perr.Newf(perr.ErrorCodeValidation, "validation: %v", err)
}
