package project

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

var (
	assignmentRoleTag  = "assignmentrole"
	assignmentRoleText = "invalid assignment role"
)

// InitValidators registers the project validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(assignmentRoleTag, assignmentRoleValidation)
	core.RegisterCustomTranslation(validate, translator, assignmentRoleTag, assignmentRoleText)
}

func assignmentRoleValidation(fl validator.FieldLevel) bool {
	return core.ContainsString(AssignmentRoles, fl.Field().String())
}
