/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures of the HTTP API. These types decouple the
  game's read model from the wire contract, so fields can be renamed on
  either side without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

TYPES:
  State:
    StateDTO and one section DTO per module

  Actions:
    ActionResponse, AllocationRequest, AmountRequest, PhaseRequest,
    WorkSplitRequest, AdvanceRequest

  Ledger:
    LedgerEntryDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. Request fields are pointers
  so a missing field can be told apart from a zero.

SEE ALSO:
  - handlers.go: Uses these types
  - game/view.go: The read model
*/
package api

import (
	"time"

	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
)

// =============================================================================
// STATE
// =============================================================================

type StateDTO struct {
	Date          string             `json:"date"`
	Year          int                `json:"year"`
	Month         int                `json:"month"`
	ElapsedMonths float64            `json:"elapsed_months"`
	Paused        bool               `json:"paused"`
	Running       bool               `json:"running"`
	Finished      bool               `json:"finished"`
	LastSavedAt   string             `json:"last_saved_at,omitempty"`
	Phase         string             `json:"phase"`
	PhaseTitle    string             `json:"phase_title"`
	Modules       ModulesDTO         `json:"modules"`
	Resources     map[string]float64 `json:"resources"`
	Founding      FoundingDTO        `json:"founding"`
	Talent        StaffDTO           `json:"talent"`
	Researchers   StaffDTO           `json:"researchers"`
	Products      ProductsDTO        `json:"products"`
	TechTree      TechTreeDTO        `json:"tech_tree"`
	Hardware      HardwareDTO        `json:"hardware"`
}

type ModulesDTO struct {
	Talent      bool `json:"talent"`
	Products    bool `json:"products"`
	Researchers bool `json:"researchers"`
	Hardware    bool `json:"hardware"`
	TechTree    bool `json:"tech_tree"`
}

type FoundingDTO struct {
	CanFoundCompany bool    `json:"can_found_company"`
	CompanyProgress float64 `json:"company_progress"`
	CanFoundLab     bool    `json:"can_found_lab"`
	LabProgress     float64 `json:"lab_progress"`
}

type StaffDTO struct {
	Role              string  `json:"role"`
	Name              string  `json:"name"`
	Count             int     `json:"count"`
	HasHired          bool    `json:"has_hired"`
	Allocation        float64 `json:"allocation"`
	CanHire           bool    `json:"can_hire"`
	CanFire           bool    `json:"can_fire"`
	HireCost          float64 `json:"hire_cost"`
	MonthlyIncome     float64 `json:"monthly_income"`
	MonthlySalary     float64 `json:"monthly_salary"`
	MonthlyNetIncome  float64 `json:"monthly_net_income"`
	MonthlyInsights   float64 `json:"monthly_insights"`
	InsightsPerClick  float64 `json:"insights_per_click"`
	FirstHireProgress float64 `json:"first_hire_progress"`
}

type ProductDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category,omitempty"`
	Year          int     `json:"year"`
	BaseCost      float64 `json:"base_cost"`
	BaseIncome    float64 `json:"base_income"`
	Saturation    float64 `json:"saturation,omitempty"`
	CurrentIncome float64 `json:"current_income,omitempty"`
}

type ProductsDTO struct {
	Active                 []ProductDTO `json:"active"`
	Available              []ProductDTO `json:"available"`
	InDevelopment          *ProductDTO  `json:"in_development,omitempty"`
	DevelopmentProgress    float64      `json:"development_progress"`
	CanLaunch              bool         `json:"can_launch"`
	WeightedSaturation     float64      `json:"weighted_saturation"`
	MarketingEffectiveness float64      `json:"marketing_effectiveness"`
	CurrentIncome          float64      `json:"current_income"`
	HasProduct             bool         `json:"has_product"`
	HasLaunchedFirst       bool         `json:"has_launched_first"`
}

type TechItemDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Kind           string   `json:"kind"`
	State          string   `json:"state"`
	Cost           float64  `json:"cost"`
	WorkRequired   float64  `json:"work_required"`
	Progress       float64  `json:"progress"`
	Selected       bool     `json:"selected"`
	Prerequisites  []string `json:"prerequisites,omitempty"`
	Boost          float64  `json:"boost,omitempty"`
	IncomePerMonth float64  `json:"income_per_month,omitempty"`
}

type TechTreeDTO struct {
	Items             []TechItemDTO `json:"items"`
	SelectedProduct   string        `json:"selected_product,omitempty"`
	SelectedDiscovery string        `json:"selected_discovery,omitempty"`
	ProductShare      float64       `json:"product_share"`
	TotalMultiplier   float64       `json:"total_multiplier"`
	IncomePerMonth    float64       `json:"income_per_month"`
}

type TierDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	Flops float64 `json:"flops"`
}

type HardwareDTO struct {
	Current           TierDTO  `json:"current"`
	Next              *TierDTO `json:"next,omitempty"`
	Savings           float64  `json:"savings"`
	CanUpgrade        bool     `json:"can_upgrade"`
	UpgradeProgress   float64  `json:"upgrade_progress"`
	InsightMultiplier float64  `json:"insight_multiplier"`
	WorkRate          float64  `json:"work_rate"`
}

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ActionResponse wraps every action result. OK is false when the action
// was not possible; that is not an HTTP error.
type ActionResponse struct {
	OK    bool     `json:"ok"`
	State StateDTO `json:"state"`
}

type AllocationRequest struct {
	Allocation *float64 `json:"allocation"`
}

type AmountRequest struct {
	Amount *float64 `json:"amount"`
}

type PhaseRequest struct {
	Phase string `json:"phase"`
}

type WorkSplitRequest struct {
	ProductShare *float64 `json:"product_share"`
}

type AdvanceRequest struct {
	Months int `json:"months"`
}

// LedgerEntryDTO is one journaled balance change.
type LedgerEntryDTO struct {
	Seq      uint64  `json:"seq"`
	Month    int     `json:"month"`
	Resource string  `json:"resource"`
	Delta    float64 `json:"delta"`
	Balance  float64 `json:"balance"`
	Reason   string  `json:"reason"`
}

// VersionDTO is build metadata.
type VersionDTO struct {
	Version   string `json:"version"`
	Name      string `json:"name"`
	BuildTime string `json:"build_time"`
}

// ScenarioDTO describes a demo save.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Phase       string `json:"phase"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

func toStateDTO(v game.View) StateDTO {
	dto := StateDTO{
		Date:          v.DisplayDate,
		Year:          v.Date.Year,
		Month:         v.Date.MonthIndex(),
		ElapsedMonths: v.ElapsedMonths,
		Paused:        v.Paused,
		Running:       v.Running,
		Finished:      v.Finished,
		Phase:         v.Phase.String(),
		PhaseTitle:    v.PhaseTitle,
		Modules: ModulesDTO{
			Talent:      v.Modules.Talent,
			Products:    v.Modules.Products,
			Researchers: v.Modules.Researchers,
			Hardware:    v.Modules.Hardware,
			TechTree:    v.Modules.TechTree,
		},
		Resources: make(map[string]float64, len(v.Resources)),
		Founding: FoundingDTO{
			CanFoundCompany: v.Founding.CanFoundCompany,
			CompanyProgress: v.Founding.CompanyProgress,
			CanFoundLab:     v.Founding.CanFoundLab,
			LabProgress:     v.Founding.LabProgress,
		},
		Talent:      toStaffDTO(v.Talent),
		Researchers: toStaffDTO(v.Researchers),
		Products:    toProductsDTO(v.Products),
		TechTree:    toTechTreeDTO(v.TechTree),
		Hardware:    toHardwareDTO(v.Hardware),
	}
	if !v.LastSavedAt.IsZero() {
		dto.LastSavedAt = v.LastSavedAt.UTC().Format(time.RFC3339)
	}
	for k, amount := range v.Resources {
		dto.Resources[string(k)] = amount
	}
	return dto
}

func toStaffDTO(s game.StaffView) StaffDTO {
	return StaffDTO{
		Role:              s.RoleID,
		Name:              s.RoleName,
		Count:             s.Count,
		HasHired:          s.HasHired,
		Allocation:        s.Allocation,
		CanHire:           s.CanHire,
		CanFire:           s.CanFire,
		HireCost:          s.HireCost,
		MonthlyIncome:     s.MonthlyIncome,
		MonthlySalary:     s.MonthlySalary,
		MonthlyNetIncome:  s.MonthlyNetIncome,
		MonthlyInsights:   s.MonthlyInsights,
		InsightsPerClick:  s.InsightsPerClick,
		FirstHireProgress: s.FirstHireProgress,
	}
}

func toProductsDTO(p game.ProductsView) ProductsDTO {
	dto := ProductsDTO{
		Active:                 make([]ProductDTO, 0, len(p.Active)),
		Available:              make([]ProductDTO, 0, len(p.Available)),
		DevelopmentProgress:    p.DevelopmentProgress,
		CanLaunch:              p.CanLaunch,
		WeightedSaturation:     p.WeightedSaturation,
		MarketingEffectiveness: p.MarketingEffectiveness,
		CurrentIncome:          p.CurrentIncome,
		HasProduct:             p.HasProduct,
		HasLaunchedFirst:       p.HasLaunchedFirst,
	}
	for _, inst := range p.Active {
		d := productDTO(inst.ID, inst.Name, inst.Description, inst.Category, inst.Year, inst.BaseCost, inst.BaseIncome)
		d.Saturation = inst.Saturation
		d.CurrentIncome = inst.CurrentIncome
		dto.Active = append(dto.Active, d)
	}
	for _, prod := range p.Available {
		dto.Available = append(dto.Available,
			productDTO(prod.ID, prod.Name, prod.Description, prod.Category, prod.Year, prod.BaseCost, prod.BaseIncome))
	}
	if next := p.InDevelopment; next != nil {
		d := productDTO(next.ID, next.Name, next.Description, next.Category, next.Year, next.BaseCost, next.BaseIncome)
		dto.InDevelopment = &d
	}
	return dto
}

func productDTO(id, name, desc, category string, year int, cost, income float64) ProductDTO {
	return ProductDTO{ID: id, Name: name, Description: desc, Category: category, Year: year, BaseCost: cost, BaseIncome: income}
}

func toTechTreeDTO(t game.TechTreeView) TechTreeDTO {
	dto := TechTreeDTO{
		Items:             make([]TechItemDTO, 0, len(t.Items)),
		SelectedProduct:   t.SelectedProduct,
		SelectedDiscovery: t.SelectedDiscovery,
		ProductShare:      t.ProductShare,
		TotalMultiplier:   t.TotalMultiplier,
		IncomePerMonth:    t.IncomePerMonth,
	}
	for _, it := range t.Items {
		dto.Items = append(dto.Items, TechItemDTO{
			ID:             it.ID,
			Name:           it.Name,
			Description:    it.Description,
			Kind:           string(it.Kind),
			State:          string(it.State),
			Cost:           it.Cost,
			WorkRequired:   it.WorkRequired,
			Progress:       it.Progress,
			Selected:       it.Selected,
			Prerequisites:  it.Prerequisites,
			Boost:          it.Boost,
			IncomePerMonth: it.IncomePerMonth,
		})
	}
	return dto
}

func toHardwareDTO(h game.HardwareView) HardwareDTO {
	dto := HardwareDTO{
		Current:           TierDTO(h.Current),
		Savings:           h.Savings,
		CanUpgrade:        h.CanUpgrade,
		UpgradeProgress:   h.UpgradeProgress,
		InsightMultiplier: h.InsightMultiplier,
		WorkRate:          h.WorkRate,
	}
	if h.Next != nil {
		next := TierDTO(*h.Next)
		dto.Next = &next
	}
	return dto
}

func toLedgerEntryDTOs(entries []generic.Entry) []LedgerEntryDTO {
	out := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryDTO{
			Seq:      e.Seq,
			Month:    e.Month,
			Resource: string(e.Delta.Kind),
			Delta:    e.Delta.Float64(),
			Balance:  e.Balance.InexactFloat64(),
			Reason:   e.Reason,
		}
	}
	return out
}
