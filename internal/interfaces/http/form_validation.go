package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/movimientos-api/internal/application/dto"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// los errores se reportan con el nombre JSON del campo (productoId, nota...)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeForm pliega el tipo antes de validar: " Ingreso" llega como "ingreso".
func normalizeForm(in *dto.MovementFormRequest) {
	in.Tipo = movement.ParseMovementType(in.Tipo).String()
}

// shapeErrors corre las etiquetas validate del DTO y devuelve un mensaje por campo.
func shapeErrors(in dto.MovementFormRequest) map[string]string {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = shapeMessage(fe)
	}
	return out
}

func shapeMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo requerido"
	case "oneof":
		return "valor inválido, opciones: " + fe.Param()
	case "max":
		return fmt.Sprintf("máximo %s caracteres", fe.Param())
	}
	return "valor inválido"
}

// mergeErrors agrega a dst los errores de forma de los campos que el dominio no marcó.
func mergeErrors(dst, shape map[string]string) map[string]string {
	if len(shape) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(shape))
	}
	for k, v := range shape {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}
