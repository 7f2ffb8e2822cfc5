package models

// FinancialInstitution is a bank or brokerage, referenced by accounts through Code
type FinancialInstitution struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// FinancialInstitutionRequest is the create/update body
type FinancialInstitutionRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// CodeMaster is a group of common codes (e.g. ETF types)
type CodeMaster struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	CodeName string  `json:"code_name"`
	Remark   *string `json:"remark"`
}

// CodeMasterRequest is the create/update body for a code group
type CodeMasterRequest struct {
	Code     string  `json:"code" binding:"required"`
	CodeName string  `json:"code_name" binding:"required"`
	Remark   *string `json:"remark"`
}

// CodeMasterWithDetails combines a code group with its entries
type CodeMasterWithDetails struct {
	CodeMaster
	Details []CodeDetail `json:"details"`
}

// CodeDetail is one entry of a code group
type CodeDetail struct {
	ID             int64  `json:"id"`
	MasterID       int64  `json:"master_id"`
	DetailCode     string `json:"detail_code"`
	DetailCodeName string `json:"detail_code_name"`
}

// CodeDetailRequest is the create/update body for a code entry
type CodeDetailRequest struct {
	MasterID       int64  `json:"master_id" binding:"required"`
	DetailCode     string `json:"detail_code" binding:"required"`
	DetailCodeName string `json:"detail_code_name" binding:"required"`
}

// ExperienceLabStock links a lab service code to a ticker
type ExperienceLabStock struct {
	ID                    int64  `json:"id"`
	ExperienceServiceCode string `json:"experience_service_code"`
	Ticker                string `json:"ticker"`
}

// ExperienceLabStockRequest is the create/update body
type ExperienceLabStockRequest struct {
	ExperienceServiceCode string `json:"experience_service_code" binding:"required"`
	Ticker                string `json:"ticker" binding:"required"`
}
