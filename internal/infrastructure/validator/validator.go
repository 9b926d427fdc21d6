package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"facegate/internal/domain/entity"
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("model_id", validateModelID)
}

type Validator struct{}

var ValidatorInstance = Validator{}

// ValidateStruct runs the validate tags of payload and joins every field error.
func (v *Validator) ValidateStruct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		errs = append(errs, fmt.Errorf("%s: %s", fe.Namespace(), rule))
	}
	return errors.Join(errs...)
}

// ValidatePolicy checks the field rules, then the agreement quota.
func (v *Validator) ValidatePolicy(p entity.Policy) error {
	if err := v.ValidateStruct(p); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidPolicy, err)
	}
	return p.CheckAgreement()
}
