package app

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"coffeechat-scheduler/internal/schedule"
)

// RegisterValidators adds the weekday and clock tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseDay(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		c, err := schedule.ParseClock(fl.Field().String())
		return err == nil && c.OnGrid()
	})
}
