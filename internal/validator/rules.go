package validator

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// критическая ошибка конфигурации, запуск невозможен
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'not-blank': строка не состоит только из пробелов
	mustRegister("not-blank", validateNotBlank)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
