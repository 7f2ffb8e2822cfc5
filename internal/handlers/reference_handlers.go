package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
)

// InstitutionHandler handles /financial-institutions
type InstitutionHandler struct {
	repo *repository.InstitutionRepository
}

// NewInstitutionHandler creates a new InstitutionHandler
func NewInstitutionHandler(repo *repository.InstitutionRepository) *InstitutionHandler {
	return &InstitutionHandler{repo: repo}
}

// List handles GET /financial-institutions
// @Summary List financial institutions
// @Tags reference
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.FinancialInstitution
// @Failure 400 {object} models.ErrorResponse
// @Router /financial-institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.FinancialInstitution, error) {
		return h.repo.List(ctx, p.Skip, p.Limit)
	})
}

// Get handles GET /financial-institutions/:id
// @Summary Get a financial institution
// @Tags reference
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} models.FinancialInstitution
// @Failure 404 {object} models.ErrorResponse
// @Router /financial-institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	getOne(c, h.repo.GetByID)
}

// Create handles POST /financial-institutions
// @Summary Create a financial institution
// @Description The institution code must be unique
// @Tags reference
// @Accept json
// @Produce json
// @Param body body models.FinancialInstitutionRequest true "Institution"
// @Success 201 {object} models.FinancialInstitution
// @Failure 400 {object} models.ErrorResponse
// @Router /financial-institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	createOne(c, h.repo.Create)
}

// Update handles PUT /financial-institutions/:id
// @Summary Update a financial institution
// @Tags reference
// @Accept json
// @Produce json
// @Param id path int true "Institution ID"
// @Param body body models.FinancialInstitutionRequest true "Institution"
// @Success 200 {object} models.FinancialInstitution
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /financial-institutions/{id} [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	updateOne(c, h.repo.Update)
}

// Delete handles DELETE /financial-institutions/:id
// @Summary Delete a financial institution
// @Tags reference
// @Param id path int true "Institution ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /financial-institutions/{id} [delete]
func (h *InstitutionHandler) Delete(c *gin.Context) {
	deleteOne(c, "financial institution", h.repo.Delete)
}

// CodeHandler handles /common-code-masters and /common-code-details
type CodeHandler struct {
	repo *repository.CodeRepository
}

// NewCodeHandler creates a new CodeHandler
func NewCodeHandler(repo *repository.CodeRepository) *CodeHandler {
	return &CodeHandler{repo: repo}
}

// ListMasters handles GET /common-code-masters
// @Summary List common code groups
// @Tags codes
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.CodeMaster
// @Router /common-code-masters [get]
func (h *CodeHandler) ListMasters(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.CodeMaster, error) {
		return h.repo.ListMasters(ctx, p.Skip, p.Limit)
	})
}

// GetMaster handles GET /common-code-masters/:id
// @Summary Get a common code group
// @Tags codes
// @Produce json
// @Param id path int true "Master ID"
// @Success 200 {object} models.CodeMaster
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-masters/{id} [get]
func (h *CodeHandler) GetMaster(c *gin.Context) {
	getOne(c, h.repo.GetMaster)
}

// GetMasterWithDetails handles GET /common-code-masters/:id/details
// @Summary Get a common code group with its entries
// @Tags codes
// @Produce json
// @Param id path int true "Master ID"
// @Success 200 {object} models.CodeMasterWithDetails
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-masters/{id}/details [get]
func (h *CodeHandler) GetMasterWithDetails(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.CodeMasterWithDetails, error) {
		var (
			master  *models.CodeMaster
			details []models.CodeDetail
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			master, err = h.repo.GetMaster(gctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			details, err = h.repo.ListDetails(gctx, id, 0, models.MaxPageLimit)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if details == nil {
			details = []models.CodeDetail{}
		}
		return &models.CodeMasterWithDetails{CodeMaster: *master, Details: details}, nil
	})
}

// CreateMaster handles POST /common-code-masters
// @Summary Create a common code group
// @Tags codes
// @Accept json
// @Produce json
// @Param body body models.CodeMasterRequest true "Code group"
// @Success 201 {object} models.CodeMaster
// @Failure 400 {object} models.ErrorResponse
// @Router /common-code-masters [post]
func (h *CodeHandler) CreateMaster(c *gin.Context) {
	createOne(c, h.repo.CreateMaster)
}

// UpdateMaster handles PUT /common-code-masters/:id
// @Summary Update a common code group
// @Tags codes
// @Accept json
// @Produce json
// @Param id path int true "Master ID"
// @Param body body models.CodeMasterRequest true "Code group"
// @Success 200 {object} models.CodeMaster
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-masters/{id} [put]
func (h *CodeHandler) UpdateMaster(c *gin.Context) {
	updateOne(c, h.repo.UpdateMaster)
}

// DeleteMaster handles DELETE /common-code-masters/:id
// @Summary Delete a common code group and its entries
// @Tags codes
// @Param id path int true "Master ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-masters/{id} [delete]
func (h *CodeHandler) DeleteMaster(c *gin.Context) {
	deleteOne(c, "common code master", h.repo.DeleteMaster)
}

// ListDetails handles GET /common-code-details
// @Summary List common code entries
// @Tags codes
// @Produce json
// @Param master_id query int false "Only entries of this group"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.CodeDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /common-code-details [get]
func (h *CodeHandler) ListDetails(c *gin.Context) {
	var masterID int64
	if s := c.Query("master_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid master_id")
			return
		}
		masterID = id
	}
	listPage(c, func(ctx context.Context, p models.Page) ([]models.CodeDetail, error) {
		return h.repo.ListDetails(ctx, masterID, p.Skip, p.Limit)
	})
}

// GetDetail handles GET /common-code-details/:id
// @Summary Get a common code entry
// @Tags codes
// @Produce json
// @Param id path int true "Detail ID"
// @Success 200 {object} models.CodeDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-details/{id} [get]
func (h *CodeHandler) GetDetail(c *gin.Context) {
	getOne(c, h.repo.GetDetail)
}

// CreateDetail handles POST /common-code-details
// @Summary Create a common code entry
// @Tags codes
// @Accept json
// @Produce json
// @Param body body models.CodeDetailRequest true "Code entry"
// @Success 201 {object} models.CodeDetail
// @Failure 400 {object} models.ErrorResponse
// @Router /common-code-details [post]
func (h *CodeHandler) CreateDetail(c *gin.Context) {
	createOne(c, h.repo.CreateDetail)
}

// UpdateDetail handles PUT /common-code-details/:id
// @Summary Update a common code entry
// @Tags codes
// @Accept json
// @Produce json
// @Param id path int true "Detail ID"
// @Param body body models.CodeDetailRequest true "Code entry"
// @Success 200 {object} models.CodeDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-details/{id} [put]
func (h *CodeHandler) UpdateDetail(c *gin.Context) {
	updateOne(c, h.repo.UpdateDetail)
}

// DeleteDetail handles DELETE /common-code-details/:id
// @Summary Delete a common code entry
// @Tags codes
// @Param id path int true "Detail ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /common-code-details/{id} [delete]
func (h *CodeHandler) DeleteDetail(c *gin.Context) {
	deleteOne(c, "common code detail", h.repo.DeleteDetail)
}

// ExperienceHandler handles /experience-lab-stocks
type ExperienceHandler struct {
	repo *repository.ExperienceRepository
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(repo *repository.ExperienceRepository) *ExperienceHandler {
	return &ExperienceHandler{repo: repo}
}

// List handles GET /experience-lab-stocks
// @Summary List experience lab stocks
// @Tags reference
// @Produce json
// @Param experience_service_code query string false "Only stocks of this lab service"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.ExperienceLabStock
// @Router /experience-lab-stocks [get]
func (h *ExperienceHandler) List(c *gin.Context) {
	code := c.Query("experience_service_code")
	listPage(c, func(ctx context.Context, p models.Page) ([]models.ExperienceLabStock, error) {
		return h.repo.List(ctx, code, p.Skip, p.Limit)
	})
}

// Get handles GET /experience-lab-stocks/:id
// @Summary Get an experience lab stock
// @Tags reference
// @Produce json
// @Param id path int true "ID"
// @Success 200 {object} models.ExperienceLabStock
// @Failure 404 {object} models.ErrorResponse
// @Router /experience-lab-stocks/{id} [get]
func (h *ExperienceHandler) Get(c *gin.Context) {
	getOne(c, h.repo.Get)
}

// Create handles POST /experience-lab-stocks
// @Summary Create an experience lab stock
// @Tags reference
// @Accept json
// @Produce json
// @Param body body models.ExperienceLabStockRequest true "Lab stock"
// @Success 201 {object} models.ExperienceLabStock
// @Failure 400 {object} models.ErrorResponse
// @Router /experience-lab-stocks [post]
func (h *ExperienceHandler) Create(c *gin.Context) {
	createOne(c, h.repo.Create)
}

// Update handles PUT /experience-lab-stocks/:id
// @Summary Update an experience lab stock
// @Tags reference
// @Accept json
// @Produce json
// @Param id path int true "ID"
// @Param body body models.ExperienceLabStockRequest true "Lab stock"
// @Success 200 {object} models.ExperienceLabStock
// @Failure 404 {object} models.ErrorResponse
// @Router /experience-lab-stocks/{id} [put]
func (h *ExperienceHandler) Update(c *gin.Context) {
	updateOne(c, h.repo.Update)
}

// Delete handles DELETE /experience-lab-stocks/:id
// @Summary Delete an experience lab stock
// @Tags reference
// @Param id path int true "ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /experience-lab-stocks/{id} [delete]
func (h *ExperienceHandler) Delete(c *gin.Context) {
	deleteOne(c, "experience lab stock", h.repo.Delete)
}
