package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"costseg-api/internal/costseg"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	common := NewCommonServices(NewDraftStore())
	depreciation := NewDepreciationHandler(common)
	drafts := NewDraftHandler(common)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		d := v1.Group("/depreciation")
		{
			d.POST("/calculate", depreciation.CalculateDepreciation)
			d.POST("/schedule", depreciation.GenerateSchedule)
		}
		dr := v1.Group("/drafts")
		{
			dr.POST("", drafts.CreateDraft)
			dr.GET("/:draft_id", drafts.GetDraft)
			dr.PATCH("/:draft_id", drafts.UpdateDraft)
			dr.POST("/:draft_id/calculate", drafts.CalculateDraft)
		}
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"purchase_price":   2550000,
		"land_value":       550000,
		"acquisition_date": "2021-06-15",
		"filing_date":      "2021-12-31",
		"property_type":    "residential",
	}
}

func TestCalculateDepreciation(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/depreciation/calculate", validRequestBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DepreciationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.TotalDepreciable.Equal(decimal.NewFromInt(2000000)),
		"got %s", resp.TotalDepreciable)
	assert.Equal(t, 100.0, resp.BonusRate)
	assert.Equal(t, costseg.Residential27_5Year, resp.BuildingClass)
	assert.Len(t, resp.Schedule, costseg.DefaultScheduleYears)
	assert.True(t, resp.FirstYearBenefit.GreaterThan(decimal.Zero))
	assert.True(t, resp.Adjustment481a.CatchUpAdjustment.IsZero(),
		"same-year filing must not produce a catch-up")
}

func TestCalculatePercentLandValue(t *testing.T) {
	router := newTestRouter()

	body := validRequestBody()
	body["purchase_price"] = 1000000
	body["land_value"] = 20
	body["land_value_is_percent"] = true

	w := doJSON(t, router, http.MethodPost, "/api/v1/depreciation/calculate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DepreciationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.TotalDepreciable.Equal(decimal.NewFromInt(800000)),
		"got %s", resp.TotalDepreciable)
}

func TestCalculateValidationErrors(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing purchase price", func(b map[string]interface{}) { delete(b, "purchase_price") }},
		{"unknown property type", func(b map[string]interface{}) { b["property_type"] = "industrial" }},
		{"bad date format", func(b map[string]interface{}) { b["acquisition_date"] = "June 15, 2021" }},
		{"allocations not summing to one", func(b map[string]interface{}) {
			b["allocations"] = map[string]float64{"5yr": 0.5, "27.5yr": 0.4}
		}},
		{"ads with bonus override", func(b map[string]interface{}) {
			b["use_ads"] = true
			b["bonus_override"] = 50
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRequestBody()
			tc.mutate(body)
			w := doJSON(t, router, http.MethodPost, "/api/v1/depreciation/calculate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGenerateScheduleEndpoint(t *testing.T) {
	router := newTestRouter()

	body := validRequestBody()
	body["schedule_years"] = 5

	w := doJSON(t, router, http.MethodPost, "/api/v1/depreciation/schedule", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.BonusRate)
	require.Len(t, resp.Schedule, 5)
	assert.Equal(t, 1, resp.Schedule[0].Year)
	assert.Equal(t, 2021, resp.Schedule[0].CalendarYear)
}

func TestCalculateWithCapExItems(t *testing.T) {
	router := newTestRouter()

	body := validRequestBody()
	body["capex_items"] = []map[string]interface{}{
		{
			"amount":                 100000,
			"placed_in_service_date": "2021-05-01",
			"classification":         "QIP",
		},
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/depreciation/calculate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DepreciationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// QIP in the 100% bonus window is fully expensed in the filing year.
	withCapEx := resp.TotalDepreciable.Add(decimal.NewFromInt(100000))
	assert.True(t, resp.LifetimeTotals.Traditional.Equal(withCapEx),
		"got %s want %s", resp.LifetimeTotals.Traditional, withCapEx)
}
