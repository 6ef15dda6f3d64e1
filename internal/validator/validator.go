package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// Validator wraps struct-tag validation with the custom rules the analytics
// payloads need.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// Validate validates struct tags
func (v *Validator) Validate(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	// Artifact type validation
	validate.RegisterValidation("artifact_type", validateArtifactType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateArtifactType(fl validator.FieldLevel) bool {
	validTypes := []models.ArtifactType{
		models.ArtifactTestQuestion,
		models.ArtifactMaterialView,
		models.ArtifactVideoWatch,
		models.ArtifactForumPost,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}
