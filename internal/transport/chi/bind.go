package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const maxBodyBytes = 64 << 10

// errBadBody is matched by every binding failure.
var errBadBody = errors.New("bad request body")

// bindError carries a client-facing binding message.
type bindError struct {
	msg string
}

func (e *bindError) Error() string { return e.msg }

func (e *bindError) Unwrap() error { return errBadBody }

func badBody(format string, args ...any) error {
	return &bindError{msg: fmt.Sprintf(format, args...)}
}

type binder struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	bindOnce sync.Once
	bindSvc  *binder
)

// getBinder returns the validator with English messages keyed by json field names.
func getBinder() *binder {
	bindOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		bindSvc = &binder{validate: v, trans: trans}
	})
	return bindSvc
}

// decodeJSON reads one JSON object into T and validates it.
// With allowEmpty an absent body yields the zero value and ok=false.
func decodeJSON[T any](r *http.Request, allowEmpty bool) (dst T, ok bool, err error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return dst, false, badBody("read body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return dst, false, badBody("body exceeds %d bytes", maxBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if allowEmpty {
			return dst, false, nil
		}
		return dst, false, badBody("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		return dst, false, badBody("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, false, badBody("unexpected trailing data")
	}

	if err := getBinder().validate.Struct(dst); err != nil {
		return dst, false, badBody("%s", validationMessage(err))
	}
	return dst, true, nil
}

// validationMessage joins the translated messages of all failing fields.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(getBinder().trans))
	}
	return strings.Join(msgs, "; ")
}
