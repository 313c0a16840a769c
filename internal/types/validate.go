package types

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the enum tags registered:
// application_status, round_status, job_status and role. Values are matched
// the same way the Parse* helpers match them, so aliases pass validation.
// Field errors report JSON field names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "application_status", func(fl validator.FieldLevel) bool {
			_, err := ParseApplicationStatus(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "round_status", func(fl validator.FieldLevel) bool {
			_, err := ParseRoundStatus(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "job_status", func(fl validator.FieldLevel) bool {
			_, err := ParseJobStatus(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			_, err := ParseRole(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}
