package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	"github.com/freshvale/dairyops/internal/providers/pdf"
	"github.com/gin-gonic/gin"
)

type generateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req generateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateInvoiceRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Year:       req.Year,
		Month:      time.Month(req.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateInvoicesBulkRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// GenerateInvoicesBulk invoices every active customer for the period,
// skipping customers with nothing to bill.
func (s *Server) GenerateInvoicesBulk(c *gin.Context) {
	var req generateInvoicesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.GenerateBulk(c.Request.Context(), invoicedomain.GenerateBulkRequest{
		Year:  req.Year,
		Month: time.Month(req.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		CustomerID:  strings.TrimSpace(c.Query("customer_id")),
		Status:      strings.TrimSpace(c.Query("status")),
		PeriodLabel: strings.TrimSpace(c.Query("period")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type deleteInvoicesBulkRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) DeleteInvoicesBulk(c *gin.Context) {
	var req deleteInvoicesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.IDs) == 0 {
		AbortWithError(c, newValidationError("ids", "invalid_ids", "invalid value"))
		return
	}

	resp, err := s.invoiceSvc.DeleteBulk(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RenderInvoicePDF streams the invoice as a PDF document.
func (s *Server) RenderInvoicePDF(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cust, err := s.customerSvc.GetByID(c.Request.Context(), inv.CustomerID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.InvoiceData{
		BusinessName:  s.cfg.AppName,
		InvoiceNumber: inv.ID.String(),
		Period:        inv.PeriodLabel,
		IssueDate:     inv.CreatedAt.Format(dateOnlyLayout),

		CustomerName:    cust.Name,
		CustomerPhone:   cust.Phone,
		CustomerAddress: cust.Address,

		Items: []pdf.InvoiceItem{
			{Description: "Subscription deliveries", Amount: inv.SubscriptionAmount.StringFixed(2)},
			{Description: "Sales", Amount: inv.SalesAmount.StringFixed(2)},
		},

		SubscriptionAmount: inv.SubscriptionAmount.StringFixed(2),
		SalesAmount:        inv.SalesAmount.StringFixed(2),
		GSTAmount:          inv.GSTAmount.StringFixed(2),
		Total:              inv.TotalAmount.StringFixed(2),
		AmountPaid:         inv.AmountPaid.StringFixed(2),
		AmountOutstanding:  inv.AmountOutstanding.StringFixed(2),
	}

	doc, err := s.pdfProvider.GenerateInvoice(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="invoice-`+inv.PeriodLabel+`.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}
