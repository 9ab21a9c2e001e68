package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Trans is the validator message translator, shared with response.go.
var Trans ut.Translator

// InitTrans registers the json tag name function and the English
// translations on gin's validator engine, so error messages reference
// the field names clients actually send.
func InitTrans() (err error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin validator engine has unexpected type %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enT := en.New()
	uni := ut.New(enT, enT)
	Trans, ok = uni.GetTranslator("en")
	if !ok {
		return fmt.Errorf("uni.GetTranslator(en) failed")
	}
	return en_translations.RegisterDefaultTranslations(v, Trans)
}

// RemoveTopStruct strips the struct name prefix from translated
// validation errors ("LoginRequest.email" -> "email").
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := map[string]string{}
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}
