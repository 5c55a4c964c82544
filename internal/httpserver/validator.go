package httpserver

import (
	"net/http"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nkarpov/sneakershop/internal/models"
	"github.com/nkarpov/sneakershop/internal/transport"
)

type Validator struct {
	v *validatorv10.Validate
}

func NewValidator() *Validator {
	v := validatorv10.New()
	v.RegisterStructValidation(checkoutStructValidation, transport.CheckoutRequest{})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

// checkoutStructValidation enforces the cross-field rule the tag syntax
// cannot express: online payments must carry all three gateway fields.
func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(transport.CheckoutRequest)
	if req.PaymentMethod != models.PaymentMethodOnline {
		return
	}
	if req.GatewayOrderID == "" {
		sl.ReportError(req.GatewayOrderID, "gateway_order_id", "GatewayOrderID", "required_online", "")
	}
	if req.PaymentID == "" {
		sl.ReportError(req.PaymentID, "payment_id", "PaymentID", "required_online", "")
	}
	if req.Signature == "" {
		sl.ReportError(req.Signature, "signature", "Signature", "required_online", "")
	}
}

func validationMessage(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}
