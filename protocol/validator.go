// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"gitlab.com/heirloomnetwork/heirloom/pkg/url"
)

// NewValidator returns a validator with the `heir-url` rule registered.
// Empty strings are allowed; use `required` to reject them.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	err := v.RegisterValidation("heir-url", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			panic(fmt.Errorf("%q is not a string", fl.FieldName()))
		}

		s := fl.Field().String()
		if len(s) == 0 {
			// allow empty
			return true
		}

		_, err := url.Parse(s)
		return err == nil
	})
	return v, err
}
