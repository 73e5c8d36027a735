package transport

import (
	"property_portal_backend/internal/media/keys"
	"property_portal_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// TagEntityType validates that a string names a known media entity.
const TagEntityType = "media_entity"

// RegisterValidations installs the media-specific validation tags.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation(TagEntityType, func(fl playground.FieldLevel) bool {
		_, err := keys.ParseEntityType(fl.Field().String())
		return err == nil
	})
}
