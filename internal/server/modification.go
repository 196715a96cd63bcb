package server

import (
	"net/http"
	"strings"
	"time"

	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createModificationRequest struct {
	CustomerID     string          `json:"customer_id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Note           string          `json:"note"`
}

func (s *Server) CreateModification(c *gin.Context) {
	var req createModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseRequiredDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseRequiredDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.modificationSvc.Create(c.Request.Context(), modificationdomain.CreateModificationRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		ProductID:      strings.TrimSpace(req.ProductID),
		Type:           strings.TrimSpace(req.Type),
		StartDate:      startDate,
		EndDate:        endDate,
		QuantityChange: req.QuantityChange,
		Note:           strings.TrimSpace(req.Note),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateModificationRequest struct {
	StartDate      *string          `json:"start_date"`
	EndDate        *string          `json:"end_date"`
	QuantityChange *decimal.Decimal `json:"quantity_change"`
	Note           *string          `json:"note"`
	IsActive       *bool            `json:"is_active"`
}

func (s *Server) UpdateModification(c *gin.Context) {
	var req updateModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var startDate, endDate *time.Time
	if req.StartDate != nil {
		parsed, err := parseOptionalDate(*req.StartDate)
		if err != nil || parsed == nil {
			AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
			return
		}
		startDate = parsed
	}
	if req.EndDate != nil {
		parsed, err := parseOptionalDate(*req.EndDate)
		if err != nil || parsed == nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		endDate = parsed
	}

	resp, err := s.modificationSvc.Update(c.Request.Context(), modificationdomain.UpdateModificationRequest{
		ID:             c.Param("id"),
		StartDate:      startDate,
		EndDate:        endDate,
		QuantityChange: req.QuantityChange,
		Note:           req.Note,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetModificationByID(c *gin.Context) {
	resp, err := s.modificationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteModification(c *gin.Context) {
	if err := s.modificationSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListModifications(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}
	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	resp, err := s.modificationSvc.List(c.Request.Context(), modificationdomain.ListModificationRequest{
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		ProductID:  strings.TrimSpace(c.Query("product_id")),
		Active:     active,
		Date:       date,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
