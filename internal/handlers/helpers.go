package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

var notFoundErrors = []error{
	repository.ErrAccountNotFound,
	repository.ErrHoldingNotFound,
	repository.ErrSaleNotFound,
	repository.ErrAccountDividendNotFound,
	repository.ErrInstitutionNotFound,
	repository.ErrCodeMasterNotFound,
	repository.ErrCodeDetailNotFound,
	repository.ErrExperienceStockNotFound,
	repository.ErrExpenseNotFound,
	repository.ErrIncomeTargetNotFound,
	repository.ErrRetirementSettingNotFound,
	repository.ErrETFNotFound,
	repository.ErrBarNotFound,
	repository.ErrETFDividendNotFound,
	repository.ErrRateNotFound,
	repository.ErrIndicatorNotFound,
}

var badRequestErrors = []error{
	services.ErrInvalidAccount,
	services.ErrInvalidHolding,
	services.ErrInvalidSale,
	services.ErrInvalidPlanning,
	services.ErrInvalidETF,
	services.ErrInvalidMarketData,
	repository.ErrUnknownKind,
	repository.ErrUnknownMarket,
	repository.ErrReferenced,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service and repository errors onto the API error convention:
// duplicates and validation failures are 400, missing rows 404, anything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicateCode):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "duplicate",
			Message: err.Error(),
		})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	default:
		log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: msg,
	})
}

// parseID reads a positive integer path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+param)
		return 0, false
	}
	return id, true
}

// parsePage reads skip/limit, defaulting to 0 and DefaultPageLimit
func parsePage(c *gin.Context) (models.Page, bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		badRequest(c, "skip must be a non-negative integer")
		return models.Page{}, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultPageLimit)))
	if err != nil || limit < 1 || limit > models.MaxPageLimit {
		badRequest(c, "limit must be between 1 and "+strconv.Itoa(models.MaxPageLimit))
		return models.Page{}, false
	}
	return models.Page{Skip: skip, Limit: limit}, true
}

// bindJSON decodes the request body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

// The helpers below cover the plain CRUD shapes shared by the reference-data endpoints.

func getOne[T any](c *gin.Context, get func(ctx context.Context, id int64) (*T, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func listPage[T any](c *gin.Context, list func(ctx context.Context, page models.Page) ([]T, error)) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	items, err := list(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func createOne[Req, T any](c *gin.Context, create func(ctx context.Context, req *Req) (*T, error)) {
	var req Req
	if !bindJSON(c, &req) {
		return
	}
	item, err := create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func updateOne[Req, T any](c *gin.Context, update func(ctx context.Context, id int64, req *Req) (*T, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req Req
	if !bindJSON(c, &req) {
		return
	}
	item, err := update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func deleteOne(c *gin.Context, what string, del func(ctx context.Context, id int64) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted"})
}
