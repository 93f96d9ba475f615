package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateCarton checks a carton spec against its field constraints,
// returning a DimensionError for the first failing field.
func ValidateCarton(c CartonSpec) error {
	return translate(validate.Struct(c), "carton", c.ID)
}

// ValidateTruck checks a truck spec.
func ValidateTruck(t TruckSpec) error {
	return translate(validate.Struct(t), "truck", t.ID)
}

// ValidateUnits rejects an empty unit list and checks every unit's spec.
func ValidateUnits(units []CartonUnit) error {
	if len(units) == 0 {
		return ErrEmptyCartonList
	}
	for _, u := range units {
		if err := translate(validate.Struct(u.Spec), "carton", u.UnitID); err != nil {
			return err
		}
	}
	return nil
}

// translate converts validator field errors into the typed taxonomy.
func translate(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %s: %w", kind, err)
	}
	fe := fieldErrs[0]
	var value float64
	switch v := fe.Value().(type) {
	case float64:
		value = v
	case int:
		value = float64(v)
	}
	return &DimensionError{
		Kind:  kind,
		ID:    id,
		Field: fe.Field(),
		Value: value,
		Rule:  ruleMessage(fe),
	}
}

// ruleMessage maps a validator tag to a readable constraint.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
