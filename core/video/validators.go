package video

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

var (
	videoStatusTag  = "videostatus"
	videoStatusText = "invalid video status"
)

// InitValidators registers the video validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(videoStatusTag, videoStatusValidation)
	core.RegisterCustomTranslation(validate, translator, videoStatusTag, videoStatusText)
}

func videoStatusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}
