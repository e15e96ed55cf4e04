package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/api/dto"
	apperrors "github.com/campuslane/learning-service/pkg/util"
)

func bindBody(c *fiber.Ctx, v *dto.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return v.Validate(out)
}

func bindQuery(c *fiber.Ctx, v *dto.Validator, out any) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.NewValidationError("Invalid query parameters", nil)
	}
	return v.Validate(out)
}
