package server

import (
	"io"
	"net/http"
	"strings"

	outstandingdomain "github.com/freshvale/dairyops/internal/outstanding/domain"
	"github.com/freshvale/dairyops/internal/providers/pdf"
	"github.com/gin-gonic/gin"
)

// GetOutstandingDashboard reports every active customer's live
// outstanding figures.
func (s *Server) GetOutstandingDashboard(c *gin.Context) {
	resp, err := s.outstandingSvc.Dashboard(c.Request.Context(), outstandingdomain.DashboardRequest{
		CustomerSelection: strings.TrimSpace(c.Query("customer_selection")),
		SelectedIDs:       splitIDList(c.Query("selected_customer_ids")),
		SortKey:           strings.TrimSpace(c.Query("sort_key")),
		SortDirection:     strings.TrimSpace(c.Query("sort_direction")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) reportFromQuery(c *gin.Context) (outstandingdomain.Report, error) {
	startDate, err := parseRequiredDate(c.Query("start_date"))
	if err != nil {
		return outstandingdomain.Report{}, newValidationError("start_date", "invalid_start_date", "invalid start_date")
	}
	endDate, err := parseRequiredDate(c.Query("end_date"))
	if err != nil {
		return outstandingdomain.Report{}, newValidationError("end_date", "invalid_end_date", "invalid end_date")
	}

	return s.outstandingSvc.Report(c.Request.Context(), outstandingdomain.ReportRequest{
		StartDate:         startDate,
		EndDate:           endDate,
		CustomerSelection: strings.TrimSpace(c.Query("customer_selection")),
		SelectedIDs:       splitIDList(c.Query("selected_customer_ids")),
		SortKey:           strings.TrimSpace(c.Query("sort_key")),
		SortDirection:     strings.TrimSpace(c.Query("sort_direction")),
	})
}

// GetOutstandingReport reconstructs per-customer statements for the
// window from raw deliveries, sales, and payments.
func (s *Server) GetOutstandingReport(c *gin.Context) {
	resp, err := s.reportFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RenderStatementPDF streams one customer's statement for the window as
// a PDF document.
func (s *Server) RenderStatementPDF(c *gin.Context) {
	customerID := strings.TrimSpace(c.Query("customer_id"))
	if customerID == "" {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer", "invalid customer_id"))
		return
	}

	startDate, err := parseRequiredDate(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseRequiredDate(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	rep, err := s.outstandingSvc.Report(c.Request.Context(), outstandingdomain.ReportRequest{
		StartDate:         startDate,
		EndDate:           endDate,
		CustomerSelection: string(outstandingdomain.SelectSelected),
		SelectedIDs:       []string{customerID},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(rep.Statements) == 0 {
		AbortWithError(c, outstandingdomain.ErrNotFound)
		return
	}

	data := statementData(s.cfg.AppName, rep)

	doc, err := s.pdfProvider.GenerateStatement(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="statement-`+customerID+`.pdf"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}

func statementData(businessName string, rep outstandingdomain.Report) pdf.StatementData {
	st := rep.Statements[0]

	data := pdf.StatementData{
		BusinessName: businessName,
		Period:       rep.StartDate.Format(dateOnlyLayout) + " to " + rep.EndDate.Format(dateOnlyLayout),

		CustomerName:  st.Customer.Name,
		CustomerPhone: st.Customer.Phone,

		SubscriptionTotal: st.SubscriptionTotal.StringFixed(2),
		SalesTotal:        st.SalesTotal.StringFixed(2),
		PaymentsTotal:     st.PaymentsTotal.StringFixed(2),
		TotalOutstanding:  st.Customer.TotalOutstanding.StringFixed(2),
	}
	if st.Customer.UnappliedCredit.IsPositive() {
		data.UnappliedCredit = st.Customer.UnappliedCredit.StringFixed(2)
	}

	for _, line := range st.SubscriptionLines {
		data.SubscriptionLines = append(data.SubscriptionLines, pdf.StatementLine{
			Label:    line.Month,
			Detail:   line.ProductName,
			Quantity: line.Quantity.String(),
			Amount:   line.Amount.StringFixed(2),
		})
	}
	for _, saleRec := range st.Sales {
		data.Sales = append(data.Sales, pdf.StatementLine{
			Label:    saleRec.SaleDate.Format(dateOnlyLayout),
			Detail:   saleRec.ProductName,
			Quantity: saleRec.Quantity.String(),
			Amount:   saleRec.Amount.StringFixed(2),
		})
	}
	for _, payRec := range st.Payments {
		data.Payments = append(data.Payments, pdf.StatementLine{
			Label:  payRec.PaymentDate.Format(dateOnlyLayout),
			Detail: payRec.Method,
			Amount: payRec.Amount.StringFixed(2),
		})
	}

	return data
}
