package server

import (
	"net/http"
	"strings"
	"time"

	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createSubscriptionRequest struct {
	CustomerID       string          `json:"customer_id"`
	ProductID        string          `json:"product_id"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	Day1Quantity     decimal.Decimal `json:"day1_quantity"`
	Day2Quantity     decimal.Decimal `json:"day2_quantity"`
	PatternStartDate string          `json:"pattern_start_date"`
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	anchor, err := parseOptionalDate(req.PatternStartDate)
	if err != nil {
		AbortWithError(c, newValidationError("pattern_start_date", "invalid_pattern_start_date", "invalid pattern_start_date"))
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreateSubscriptionRequest{
		CustomerID:       strings.TrimSpace(req.CustomerID),
		ProductID:        strings.TrimSpace(req.ProductID),
		Type:             strings.TrimSpace(req.Type),
		Quantity:         req.Quantity,
		Day1Quantity:     req.Day1Quantity,
		Day2Quantity:     req.Day2Quantity,
		PatternStartDate: anchor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSubscriptionRequest struct {
	Quantity         *decimal.Decimal `json:"quantity"`
	Day1Quantity     *decimal.Decimal `json:"day1_quantity"`
	Day2Quantity     *decimal.Decimal `json:"day2_quantity"`
	PatternStartDate *string          `json:"pattern_start_date"`
	IsActive         *bool            `json:"is_active"`
}

func (s *Server) UpdateSubscription(c *gin.Context) {
	var req updateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var anchor *time.Time
	if req.PatternStartDate != nil {
		parsed, err := parseOptionalDate(*req.PatternStartDate)
		if err != nil || parsed == nil {
			AbortWithError(c, newValidationError("pattern_start_date", "invalid_pattern_start_date", "invalid pattern_start_date"))
			return
		}
		anchor = parsed
	}

	resp, err := s.subscriptionSvc.Update(c.Request.Context(), subscriptiondomain.UpdateSubscriptionRequest{
		ID:               c.Param("id"),
		Quantity:         req.Quantity,
		Day1Quantity:     req.Day1Quantity,
		Day2Quantity:     req.Day2Quantity,
		PatternStartDate: anchor,
		IsActive:         req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	resp, err := s.subscriptionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.subscriptionSvc.List(c.Request.Context(), subscriptiondomain.ListSubscriptionRequest{
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		ProductID:  strings.TrimSpace(c.Query("product_id")),
		Active:     active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ResolveSubscriptionQuantity reports the planned base quantity for one
// date, before modifications.
func (s *Server) ResolveSubscriptionQuantity(c *gin.Context) {
	date, err := parseRequiredDate(c.Query("date"))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	quantity, err := s.subscriptionSvc.ResolveQuantity(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"date":     date.Format(dateOnlyLayout),
		"quantity": quantity,
	}})
}
