package validator

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ikorchynskyi/opsworks-curator/internal/config"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(CommandStructLevelValidation, types.Command{})
	})
	return validate
}

// CommandStructLevelValidation rejects arguments that do not belong to the command.
func CommandStructLevelValidation(sl validator.StructLevel) {
	command := sl.Current().Interface().(types.Command)

	if command.App != "" && command.Name != "deploy" {
		sl.ReportError(command.App, "App", "App", "excluded_unless", "deploy")
	}

	if len(command.Recipes) > 0 && command.Name != "execute_recipes" {
		sl.ReportError(command.Recipes, "Recipes", "Recipes", "excluded_unless", "execute_recipes")
	}

	for _, recipe := range command.Recipes {
		if strings.ContainsAny(recipe, " ,") {
			sl.ReportError(recipe, "Recipes", "Recipes", "recipe", "")
		}
	}
}

func ValidateCommand(command *types.Command) error {
	return instance().Struct(command)
}

func ValidateConfig(cfg *config.Config) error {
	return instance().Struct(cfg)
}
