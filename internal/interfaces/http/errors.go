package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// los errores reportan el nombre JSON/query del campo
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// requestError es un error de entrada detectado en la capa HTTP (body, query o reglas del DTO).
type requestError struct {
	resp dto.ErrorResponse
}

func (e *requestError) Error() string { return e.resp.Message }

func errInvalidBody() error {
	return &requestError{dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}}
}

func errInvalidQuery() error {
	return &requestError{dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"}}
}

// validateRequest aplica las reglas `validate` del DTO.
func validateRequest(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	resp := dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		resp.Field = fieldPath(fe.Namespace())
		resp.Message = "regla " + fe.Tag() + " no cumplida"
		if fe.Param() != "" {
			resp.Message += " (" + fe.Param() + ")"
		}
	}
	return &requestError{resp}
}

// fieldPath quita el nombre del struct raíz: "BuildOrderDraftRequest.lines[0].quantity" → "lines[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// parseBody decodifica y valida el body JSON.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody()
	}
	return validateRequest(out)
}

// respondError traduce los errores de dominio a HTTP.
func respondError(c *fiber.Ctx, err error) error {
	var (
		rerr *requestError
		verr *domain.ValidationError
		serr *domain.InvalidStateError
	)
	switch {
	case errors.As(err, &rerr):
		return c.Status(fiber.StatusBadRequest).JSON(rerr.resp)
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Reason, Field: verr.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.As(err, &serr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: serr.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
