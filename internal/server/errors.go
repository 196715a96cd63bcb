package server

import (
	"errors"
	"net/http"
	"strings"

	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	outstandingdomain "github.com/freshvale/dairyops/internal/outstanding/domain"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	routedomain "github.com/freshvale/dairyops/internal/route/domain"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isRouteValidationError(err),
		isProductValidationError(err),
		isCustomerValidationError(err),
		isSubscriptionValidationError(err),
		isModificationValidationError(err),
		isOrderValidationError(err),
		isSaleValidationError(err),
		isInvoiceValidationError(err),
		isPaymentValidationError(err),
		isOutstandingValidationError(err):
		return true
	default:
		return false
	}
}

func isRouteValidationError(err error) bool {
	return errors.Is(err, routedomain.ErrInvalidName) ||
		errors.Is(err, routedomain.ErrInvalidCode) ||
		errors.Is(err, routedomain.ErrInvalidID)
}

func isProductValidationError(err error) bool {
	return errors.Is(err, productdomain.ErrInvalidName) ||
		errors.Is(err, productdomain.ErrInvalidPrice) ||
		errors.Is(err, productdomain.ErrInvalidRate) ||
		errors.Is(err, productdomain.ErrInvalidID)
}

func isCustomerValidationError(err error) bool {
	return errors.Is(err, customerdomain.ErrInvalidName) ||
		errors.Is(err, customerdomain.ErrInvalidRoute) ||
		errors.Is(err, customerdomain.ErrInvalidSlot) ||
		errors.Is(err, customerdomain.ErrInvalidBalance) ||
		errors.Is(err, customerdomain.ErrInvalidID)
}

func isSubscriptionValidationError(err error) bool {
	return errors.Is(err, subscriptiondomain.ErrInvalidCustomer) ||
		errors.Is(err, subscriptiondomain.ErrInvalidProduct) ||
		errors.Is(err, subscriptiondomain.ErrInvalidType) ||
		errors.Is(err, subscriptiondomain.ErrInvalidQuantity) ||
		errors.Is(err, subscriptiondomain.ErrMissingAnchor) ||
		errors.Is(err, subscriptiondomain.ErrInvalidID)
}

func isModificationValidationError(err error) bool {
	return errors.Is(err, modificationdomain.ErrInvalidCustomer) ||
		errors.Is(err, modificationdomain.ErrInvalidProduct) ||
		errors.Is(err, modificationdomain.ErrInvalidType) ||
		errors.Is(err, modificationdomain.ErrInvalidWindow) ||
		errors.Is(err, modificationdomain.ErrInvalidQuantity) ||
		errors.Is(err, modificationdomain.ErrInvalidID)
}

func isOrderValidationError(err error) bool {
	return errors.Is(err, orderdomain.ErrInvalidDate) ||
		errors.Is(err, orderdomain.ErrInvalidStatus) ||
		errors.Is(err, orderdomain.ErrInvalidCustomer) ||
		errors.Is(err, orderdomain.ErrInvalidRoute) ||
		errors.Is(err, orderdomain.ErrInvalidID)
}

func isSaleValidationError(err error) bool {
	return errors.Is(err, saledomain.ErrInvalidCustomer) ||
		errors.Is(err, saledomain.ErrInvalidProduct) ||
		errors.Is(err, saledomain.ErrInvalidQuantity) ||
		errors.Is(err, saledomain.ErrInvalidPrice) ||
		errors.Is(err, saledomain.ErrInvalidStatus) ||
		errors.Is(err, saledomain.ErrInvalidID)
}

func isInvoiceValidationError(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvalidCustomer) ||
		errors.Is(err, invoicedomain.ErrInvalidPeriod) ||
		errors.Is(err, invoicedomain.ErrInvalidStatus) ||
		errors.Is(err, invoicedomain.ErrInvalidID)
}

func isPaymentValidationError(err error) bool {
	return errors.Is(err, paymentdomain.ErrInvalidCustomer) ||
		errors.Is(err, paymentdomain.ErrInvalidAmount) ||
		errors.Is(err, paymentdomain.ErrInvalidTarget) ||
		errors.Is(err, paymentdomain.ErrOverAllocated) ||
		errors.Is(err, paymentdomain.ErrInvalidID)
}

func isOutstandingValidationError(err error) bool {
	return errors.Is(err, outstandingdomain.ErrInvalidCustomer) ||
		errors.Is(err, outstandingdomain.ErrInvalidWindow) ||
		errors.Is(err, outstandingdomain.ErrInvalidSelection) ||
		errors.Is(err, outstandingdomain.ErrInvalidSortKey)
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, routedomain.ErrCodeTaken),
		errors.Is(err, orderdomain.ErrOrdersExist),
		errors.Is(err, saledomain.ErrSaleInvoiced),
		errors.Is(err, invoicedomain.ErrPeriodInvoiced),
		errors.Is(err, invoicedomain.ErrNothingToBill),
		errors.Is(err, invoicedomain.ErrInvoicePaid):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, routedomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, modificationdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNoOrders),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, outstandingdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
