package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/labstack/echo/v4"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return errorx.Wrap(err, errorx.Validation)
	}
	return nil
}

// bind decodes and validates a request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errorx.Wrap(err, errorx.Invalid)
	}
	return c.Validate(req)
}
