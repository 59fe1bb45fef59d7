package domain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the fields of a record about to be created.
// Tags must belong to the closed vocabulary.
func (f *ProblemFields) Validate() error {
	if err := structValidator().Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %q check", fe.Field(), fe.Tag())
		}
		return err
	}

	for _, tag := range f.Tags {
		if !tag.IsValid() {
			return fmt.Errorf("unknown tag %q", tag)
		}
	}

	return nil
}
