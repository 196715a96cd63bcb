package server

import (
	"net/http"
	"strings"

	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createSaleRequest struct {
	CustomerID string          `json:"customer_id"`
	ProductID  string          `json:"product_id"`
	SaleDate   string          `json:"sale_date"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Paid       bool            `json:"paid"`
}

func (r createSaleRequest) toDomain() (saledomain.CreateSaleRequest, error) {
	saleDate, err := parseRequiredDate(r.SaleDate)
	if err != nil {
		return saledomain.CreateSaleRequest{}, newValidationError("sale_date", "invalid_sale_date", "invalid sale_date")
	}
	return saledomain.CreateSaleRequest{
		CustomerID: strings.TrimSpace(r.CustomerID),
		ProductID:  strings.TrimSpace(r.ProductID),
		SaleDate:   saleDate,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		Paid:       r.Paid,
	}, nil
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createSalesBulkRequest struct {
	Sales []createSaleRequest `json:"sales"`
}

// CreateSalesBulk records a batch of sales with partial success: bad
// rows are reported per index, good rows still commit.
func (s *Server) CreateSalesBulk(c *gin.Context) {
	var req createSalesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Sales) == 0 {
		AbortWithError(c, newValidationError("sales", "invalid_sales", "invalid value"))
		return
	}

	reqs := make([]saledomain.CreateSaleRequest, 0, len(req.Sales))
	for _, item := range req.Sales {
		domainReq, err := item.toDomain()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		reqs = append(reqs, domainReq)
	}

	resp, err := s.saleSvc.CreateBulk(c.Request.Context(), reqs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	resp, err := s.saleSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSale(c *gin.Context) {
	if err := s.saleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type deleteSalesBulkRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) DeleteSalesBulk(c *gin.Context) {
	var req deleteSalesBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.IDs) == 0 {
		AbortWithError(c, newValidationError("ids", "invalid_ids", "invalid value"))
		return
	}

	resp, err := s.saleSvc.DeleteBulk(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
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

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
