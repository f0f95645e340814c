package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"travelshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPlanForm_Renders(t *testing.T) {
	app := newTestApp(&stubAPI{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := pageBody(t, resp)
	assert.Contains(t, body, `name="city"`)
	assert.Contains(t, body, `name="days"`)
	assert.NotContains(t, body, "Failed to plan trip.")
}

func TestPlanTrip_ParsesNumericFields(t *testing.T) {
	api := &stubAPI{plan: "Day 1: wander the old town."}
	app := newTestApp(api)

	resp, err := app.Test(planForm(url.Values{
		"city":    {"Kyoto"},
		"concept": {"temples"},
		"budget":  {"1500"},
		"days":    {"3"},
		"people":  {"2"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, models.PlanRequest{
		City: "Kyoto", Concept: "temples", Budget: 1500, Days: 3, People: 2,
	}, api.lastPlan)

	body := pageBody(t, resp)
	assert.Contains(t, body, "Day 1: wander the old town.")
	assert.NotContains(t, body, "Failed to plan trip.")
}

func TestPlanTrip_MalformedNumbersBecomeZero(t *testing.T) {
	api := &stubAPI{plan: "ok"}
	app := newTestApp(api)

	resp, err := app.Test(planForm(url.Values{
		"city": {"Kyoto"}, "budget": {"lots"}, "days": {""}, "people": {"2"},
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, 0, api.lastPlan.Budget)
	assert.Equal(t, 0, api.lastPlan.Days)
	assert.Equal(t, 2, api.lastPlan.People)
}

func TestPlanTrip_UpstreamFailureShowsMessage(t *testing.T) {
	api := &stubAPI{planErr: errors.New("boom")}
	app := newTestApp(api)

	resp, err := app.Test(planForm(url.Values{"city": {"Kyoto"}, "days": {"3"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := pageBody(t, resp)
	assert.Contains(t, body, "Failed to plan trip.")
	assert.NotContains(t, body, `class="plan"`)
}
