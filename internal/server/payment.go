package server

import (
	"net/http"
	"strings"

	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type allocationRequest struct {
	Type     string          `json:"type"`
	TargetID string          `json:"target_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type recordPaymentRequest struct {
	CustomerID   string              `json:"customer_id"`
	Amount       decimal.Decimal     `json:"amount"`
	PaymentDate  string              `json:"payment_date"`
	Method       string              `json:"method"`
	Note         string              `json:"note"`
	AutoAllocate bool                `json:"auto_allocate"`
	Allocations  []allocationRequest `json:"allocations"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseRequiredDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
		return
	}

	allocs := make([]paymentdomain.AllocationRequest, 0, len(req.Allocations))
	for _, alloc := range req.Allocations {
		allocs = append(allocs, paymentdomain.AllocationRequest{
			Type:     strings.TrimSpace(alloc.Type),
			TargetID: strings.TrimSpace(alloc.TargetID),
			Amount:   alloc.Amount,
		})
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		Amount:       req.Amount,
		PaymentDate:  paymentDate,
		Method:       strings.TrimSpace(req.Method),
		Note:         strings.TrimSpace(req.Note),
		AutoAllocate: req.AutoAllocate,
		Allocations:  allocs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeletePayment reverses the payment and its allocation effects.
func (s *Server) DeletePayment(c *gin.Context) {
	if err := s.paymentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListPayments(c *gin.Context) {
	startDate, err := parseOptionalDate(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalDate(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetAllocationPools lists everything a customer's payment can be
// applied to, with caps, for the allocation dialog.
func (s *Server) GetAllocationPools(c *gin.Context) {
	customerID := strings.TrimSpace(c.Query("customer_id"))
	if customerID == "" {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer", "invalid customer_id"))
		return
	}

	resp, err := s.paymentSvc.Pools(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
