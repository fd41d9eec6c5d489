package response

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUnauthorized       = 40100
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeConflict           = 40900
	CodeValidation         = 42200
	CodeInternalServer     = 50000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeInsufficientStock  = 40003
	CodeCartEmpty          = 40004
	CodeProductUnavailable = 40005
	CodeInvalidCredentials = 40101
	CodeSessionNotFound    = 40401
	CodeAssistantDisabled  = 50001
	CodeAssistantBlocked   = 50002
)

type APIResponse struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ValidationFailed answers 422 with messages grouped by request field.
func ValidationFailed(c *gin.Context, fields map[string][]string) {
	c.JSON(422, APIResponse{
		Code:    CodeValidation,
		Message: "Los datos enviados no son válidos.",
		Errors:  fields,
	})
}

// BindingErrors turns a ShouldBind error into per-field messages.
func BindingErrors(err error) map[string][]string {
	fields := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = []string{"El cuerpo de la solicitud no es válido."}
		return fields
	}
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], fieldMessage(name, fe))
	}
	return fields
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", name)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("El campo %s no debe superar %s caracteres.", name, fe.Param())
		}
		return fmt.Sprintf("El campo %s no debe ser mayor que %s.", name, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", name, fe.Param())
		}
		return fmt.Sprintf("El campo %s debe ser al menos %s.", name, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("El campo %s debe ser mayor que %s.", name, fe.Param())
	case "lte":
		return fmt.Sprintf("El campo %s no debe ser mayor que %s.", name, fe.Param())
	case "email":
		return fmt.Sprintf("El campo %s debe ser un correo válido.", name)
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s.", name, fe.Param())
	default:
		return fmt.Sprintf("El campo %s no es válido.", name)
	}
}

// UseJSONFieldNames makes validation errors report json and form names
// instead of Go struct field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
}
