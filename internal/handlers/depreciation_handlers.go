package handlers

import (
	"costseg-api/internal/costseg"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DepreciationHandler serves the cost-segregation depreciation endpoints.
type DepreciationHandler struct {
	common *CommonServices
}

// NewDepreciationHandler creates a new DepreciationHandler
func NewDepreciationHandler(common *CommonServices) *DepreciationHandler {
	return &DepreciationHandler{common: common}
}

// CapExItemRequest is one capital improvement with its own service date.
type CapExItemRequest struct {
	Amount              float64 `json:"amount" binding:"required,gt=0"`
	PlacedInServiceDate string  `json:"placed_in_service_date" binding:"required"`
	Classification      string  `json:"classification"`
}

// DepreciationRequest is the API shape of PropertyFacts. Units are explicit:
// land_value is dollars unless land_value_is_percent is set, in which case
// it is a 0-100 percentage of the purchase price. Allocations are fractions.
type DepreciationRequest struct {
	PurchasePrice      float64 `json:"purchase_price" binding:"required,gt=0"`
	LandValue          float64 `json:"land_value" binding:"min=0"`
	LandValueIsPercent bool    `json:"land_value_is_percent"`

	CapEx        float64 `json:"capex"`
	PAD          float64 `json:"pad"`
	DeferredGain float64 `json:"deferred_gain"`

	AcquisitionDate string `json:"acquisition_date" binding:"required"`
	FilingDate      string `json:"filing_date" binding:"required"`

	PropertyType string `json:"property_type" binding:"required,oneof=residential commercial"`
	YearBuilt    int    `json:"year_built"`

	UseADS        bool     `json:"use_ads"`
	BonusOverride *float64 `json:"bonus_override"`

	Allocations map[string]float64 `json:"allocations"`
	CapExItems  []CapExItemRequest `json:"capex_items"`

	ScheduleYears int `json:"schedule_years"`
}

// ToFacts converts the request into engine facts, parsing dates and
// resolving the land-value unit at this boundary.
func (r *DepreciationRequest) ToFacts() (costseg.PropertyFacts, error) {
	acquired, err := costseg.ParseDate(r.AcquisitionDate)
	if err != nil {
		return costseg.PropertyFacts{}, err
	}
	filed, err := costseg.ParseDate(r.FilingDate)
	if err != nil {
		return costseg.PropertyFacts{}, err
	}

	landValue := r.LandValue
	if r.LandValueIsPercent {
		landValue = r.PurchasePrice * r.LandValue / 100
	}

	facts := costseg.PropertyFacts{
		PurchasePrice:                r.PurchasePrice,
		LandValue:                    landValue,
		LegacyCapEx:                  r.CapEx,
		PriorAccumulatedDepreciation: r.PAD,
		DeferredGain:                 r.DeferredGain,
		AcquisitionDate:              acquired,
		FilingDate:                   filed,
		PropertyType:                 costseg.PropertyType(r.PropertyType),
		YearBuilt:                    r.YearBuilt,
		UseADS:                       r.UseADS,
		BonusOverride:                r.BonusOverride,
	}

	if len(r.Allocations) > 0 {
		facts.Allocations = make(map[costseg.AssetClass]float64, len(r.Allocations))
		for class, fraction := range r.Allocations {
			facts.Allocations[costseg.AssetClass(class)] = fraction
		}
	}

	for _, item := range r.CapExItems {
		pisDate, err := costseg.ParseDate(item.PlacedInServiceDate)
		if err != nil {
			return costseg.PropertyFacts{}, err
		}
		facts.CapExItems = append(facts.CapExItems, costseg.CapExItem{
			Amount:          item.Amount,
			PlacedInService: pisDate,
			Classification:  costseg.Classification(item.Classification),
		})
	}

	return facts, nil
}

// AllocationsResponse reports the basis split both as fractions and dollars.
type AllocationsResponse struct {
	Percentages map[costseg.AssetClass]float64         `json:"percentages"`
	Amounts     map[costseg.AssetClass]decimal.Decimal `json:"amounts"`
}

// Adjustment481aResponse is the JSON shape of the 481(a) record.
type Adjustment481aResponse struct {
	YearsElapsed            int                                    `json:"years_elapsed"`
	ShouldHaveTaken         decimal.Decimal                        `json:"should_have_taken"`
	ShouldHaveTakenDetail   map[costseg.AssetClass]decimal.Decimal `json:"should_have_taken_detail,omitempty"`
	DidTake                 decimal.Decimal                        `json:"did_take"`
	CatchUpAdjustment       decimal.Decimal                        `json:"catch_up_adjustment"`
	CurrentYearDepreciation map[costseg.AssetClass]decimal.Decimal `json:"current_year_depreciation"`
	CurrentYearTotal        decimal.Decimal                        `json:"current_year_total"`
	TotalFirstYearBenefit   decimal.Decimal                        `json:"total_first_year_benefit"`
}

// ScheduleYearResponse is one projected schedule row.
type ScheduleYearResponse struct {
	Year              int                                    `json:"year"`
	CalendarYear      int                                    `json:"calendar_year"`
	Depreciation      map[costseg.AssetClass]decimal.Decimal `json:"depreciation"`
	DepreciationTotal decimal.Decimal                        `json:"depreciation_total"`
	Accumulated       map[costseg.AssetClass]decimal.Decimal `json:"accumulated"`
	AccumulatedTotal  decimal.Decimal                        `json:"accumulated_total"`
}

// LifetimeTotalsResponse reports total depreciation per method.
type LifetimeTotalsResponse struct {
	Standard    decimal.Decimal `json:"standard"`
	Traditional decimal.Decimal `json:"traditional"`
	Bonus       decimal.Decimal `json:"bonus"`
}

// DepreciationResponse is the full calculation report.
type DepreciationResponse struct {
	TotalDepreciable decimal.Decimal        `json:"total_depreciable"`
	BonusRate        float64                `json:"bonus_rate"`
	BuildingClass    costseg.AssetClass     `json:"building_class"`
	Allocations      AllocationsResponse    `json:"allocations"`
	Adjustment481a   Adjustment481aResponse `json:"depreciation_481a"`
	Schedule         []ScheduleYearResponse `json:"schedule"`
	LifetimeTotals   LifetimeTotalsResponse `json:"lifetime_totals"`
	FirstYearBenefit decimal.Decimal        `json:"first_year_benefit"`
}

// ScheduleResponse is the schedule-only report.
type ScheduleResponse struct {
	BonusRate float64                `json:"bonus_rate"`
	Schedule  []ScheduleYearResponse `json:"schedule"`
}

// CalculateDepreciation handles POST /depreciation/calculate. It validates
// the facts, runs the engine, and returns the full report.
func (h *DepreciationHandler) CalculateDepreciation(c *gin.Context) {
	var req DepreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}
	report, err := buildReport(&req)
	if err != nil {
		handleCalcError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, report)
}

// GenerateSchedule handles POST /depreciation/schedule.
func (h *DepreciationHandler) GenerateSchedule(c *gin.Context) {
	var req DepreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	facts, err := req.ToFacts()
	if err != nil {
		handleCalcError(c, err)
		return
	}
	calc, err := costseg.NewCalculator(facts)
	if err != nil {
		handleCalcError(c, err)
		return
	}
	schedule, err := calc.GenerateSchedule(scheduleYearsOrDefault(req.ScheduleYears))
	if err != nil {
		handleCalcError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, ScheduleResponse{
		BonusRate: calc.BonusRate(),
		Schedule:  toScheduleResponse(schedule),
	})
}

func scheduleYearsOrDefault(years int) int {
	if years < 1 {
		return costseg.DefaultScheduleYears
	}
	return years
}

func toScheduleResponse(schedule []costseg.ScheduleYear) []ScheduleYearResponse {
	rows := make([]ScheduleYearResponse, 0, len(schedule))
	for _, row := range schedule {
		rows = append(rows, ScheduleYearResponse{
			Year:              row.Year,
			CalendarYear:      row.CalendarYear,
			Depreciation:      row.Depreciation,
			DepreciationTotal: row.DepreciationTotal,
			Accumulated:       row.Accumulated,
			AccumulatedTotal:  row.AccumulatedTotal,
		})
	}
	return rows
}

// buildReport runs the engine end to end for a validated request.
func buildReport(req *DepreciationRequest) (*DepreciationResponse, error) {
	facts, err := req.ToFacts()
	if err != nil {
		return nil, err
	}
	calc, err := costseg.NewCalculator(facts)
	if err != nil {
		return nil, err
	}

	adjustment, err := calc.Calculate481a()
	if err != nil {
		return nil, err
	}
	schedule, err := calc.GenerateSchedule(scheduleYearsOrDefault(req.ScheduleYears))
	if err != nil {
		return nil, err
	}
	totals, err := calc.LifetimeTotals(true)
	if err != nil {
		return nil, err
	}

	return &DepreciationResponse{
		TotalDepreciable: calc.TotalDepreciable(),
		BonusRate:        calc.BonusRate(),
		BuildingClass:    calc.BuildingClass(),
		Allocations: AllocationsResponse{
			Percentages: calc.Allocations(),
			Amounts:     calc.AllocatedAmounts(),
		},
		Adjustment481a: Adjustment481aResponse{
			YearsElapsed:            adjustment.YearsElapsed,
			ShouldHaveTaken:         adjustment.ShouldHaveTaken,
			ShouldHaveTakenDetail:   adjustment.ShouldHaveTakenDetail,
			DidTake:                 adjustment.DidTake,
			CatchUpAdjustment:       adjustment.CatchUpAdjustment,
			CurrentYearDepreciation: adjustment.CurrentYearDepreciation,
			CurrentYearTotal:        adjustment.CurrentYearTotal,
			TotalFirstYearBenefit:   adjustment.TotalFirstYearBenefit,
		},
		Schedule: toScheduleResponse(schedule),
		LifetimeTotals: LifetimeTotalsResponse{
			Standard:    totals.Standard,
			Traditional: totals.Traditional,
			Bonus:       totals.Bonus,
		},
		FirstYearBenefit: adjustment.TotalFirstYearBenefit,
	}, nil
}
