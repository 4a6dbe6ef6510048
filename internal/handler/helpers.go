package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/jdirocco/forno/internal/apierror"
	"github.com/jdirocco/forno/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON non valido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery is the query-string counterpart of bindAndValidate.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametri non validi: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a UUID path parameter. Returns uuid.Nil and false after
// writing the 400 response when the value is not a UUID.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID non valido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP statuses so
// every handler answers consistently: 404 for missing resources, 409 for
// business-rule conflicts, 400 for everything else.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrShipmentNotFound),
		errors.Is(err, service.ErrShopNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrReturnNotFound),
		errors.Is(err, service.ErrPDFNotAvailable):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrShopCodeTaken),
		errors.Is(err, service.ErrProductCodeTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReturnBadTransition),
		errors.Is(err, service.ErrReturnNotEditable):
		status = http.StatusConflict
	}
	c.JSON(status, apierror.New(err.Error()))
}
