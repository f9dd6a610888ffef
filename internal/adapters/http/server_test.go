package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"certmap/internal/domain"
	"certmap/internal/mapview"
	"certmap/internal/platform/metrics"
	"certmap/internal/services/dataset"
)

type ServerSuite struct {
	suite.Suite
	store   *dataset.Store
	metrics *metrics.Metrics
	router  http.Handler
}

func (s *ServerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = dataset.NewStore(logger)
	s.metrics = metrics.New()
	s.router = New(s.store, mapview.Config{AccessToken: "pk.test"}, s.metrics, logger).Routes()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(method, target string, body []byte) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(v))
}

func (s *ServerSuite) TestHealthz() {
	rec := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.JSONEq(s.T(), `{"status":"ok"}`, rec.Body.String())
}

func (s *ServerSuite) TestDataset_StartsFromReferenceData() {
	rec := s.do(http.MethodGet, "/api/dataset", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp datasetResponse
	s.decode(rec, &resp)
	assert.Equal(s.T(), dataset.ProvenanceStatic, resp.Provenance)
	assert.False(s.T(), resp.Syncing)
	assert.Empty(s.T(), resp.SyncError)
	assert.Nil(s.T(), resp.SyncedAt)
	require.Len(s.T(), resp.Sensors, 3)
	assert.Equal(s.T(), 45, resp.Sensors[0].Total)
}

func (s *ServerSuite) TestSensors_PriorityOrder() {
	rec := s.do(http.MethodGet, "/api/sensors", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp []sensorSummary
	s.decode(rec, &resp)
	var slugs []domain.SensorSlug
	for _, sensor := range resp {
		slugs = append(slugs, sensor.Slug)
	}
	assert.Equal(s.T(), domain.SensorOrder, slugs)
	assert.Equal(s.T(), 39, resp[0].Totals[domain.StatusCertified])
}

func (s *ServerSuite) TestCountries_UnknownSensor() {
	rec := s.do(http.MethodGet, "/api/sensors/doorbell/countries", nil)
	require.Equal(s.T(), http.StatusNotFound, rec.Code)

	var body errorBody
	s.decode(rec, &body)
	assert.Equal(s.T(), "not_found", body.Error)
	assert.Contains(s.T(), body.Description, "doorbell")
}

func (s *ServerSuite) TestCountries_FilterAndSelection() {
	rec := s.do(http.MethodGet, "/api/sensors/open-area/countries?q=FCC&selected=usa", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp countriesResponse
	s.decode(rec, &resp)
	assert.True(s.T(), resp.SearchActive)
	assert.Equal(s.T(), 3, resp.Matched)
	require.NotNil(s.T(), resp.Selected)
	assert.Equal(s.T(), "USA", resp.Selected.ISO3)
	// Totals always describe the whole sensor line.
	assert.Equal(s.T(), 45, resp.Sensor.Total)
}

func (s *ServerSuite) TestCountries_SelectionOutsideFilterIsDropped() {
	rec := s.do(http.MethodGet, "/api/sensors/open-area/countries?q=FCC&selected=FRA", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp countriesResponse
	s.decode(rec, &resp)
	assert.Nil(s.T(), resp.Selected)
}

func (s *ServerSuite) TestPaint_CarriesExpressionsAndFills() {
	rec := s.do(http.MethodGet, "/api/sensors/waffle/paint?q=fcc&hover=can&selected=USA", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp paintResponse
	s.decode(rec, &resp)
	require.True(s.T(), resp.Enabled)
	require.NotNil(s.T(), resp.Style)
	assert.Equal(s.T(), mapview.Expression{"==", mapview.Expression{"get", mapview.ISOProperty}, "CAN"}, normalize(resp.Style.HoverFilter))
	assert.Equal(s.T(), mapview.Expression{"==", mapview.Expression{"get", mapview.ISOProperty}, "USA"}, normalize(resp.Style.SelectFilter))
	assert.Equal(s.T(), mapview.StateMatched, resp.Fills["USA"].State)
	assert.Equal(s.T(), mapview.StateFilteredOut, resp.Fills["FRA"].State)
}

func (s *ServerSuite) TestPaint_WithoutTokenReturnsFallback() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := New(s.store, mapview.Config{}, nil, logger).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/sensors/entry/paint", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp paintResponse
	s.decode(rec, &resp)
	assert.False(s.T(), resp.Enabled)
	assert.Nil(s.T(), resp.Style)
	assert.Equal(s.T(), mapview.FallbackNotice("Entry"), resp.Fallback)
}

func (s *ServerSuite) TestClick_HitSelectsAndEases() {
	body := `{"iso3":"fra","lng_lat":{"lng":2.3,"lat":48.8},"zoom":1.4}`
	rec := s.do(http.MethodPost, "/api/sensors/open-area/click", []byte(body))
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp clickResponse
	s.decode(rec, &resp)
	require.NotNil(s.T(), resp.Selected)
	assert.Equal(s.T(), "FRA", *resp.Selected)
	require.NotNil(s.T(), resp.Camera)
	assert.Equal(s.T(), mapview.ClickZoomFloor, resp.Camera.Zoom)
	assert.Equal(s.T(), mapview.ClickEaseMS, resp.Camera.DurationMS)
}

func (s *ServerSuite) TestClick_MissKeepsSelection() {
	body := `{"iso3":"ATA","lng_lat":{"lng":0,"lat":-80},"zoom":3}`
	rec := s.do(http.MethodPost, "/api/sensors/open-area/click?selected=DEU", []byte(body))
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp clickResponse
	s.decode(rec, &resp)
	require.NotNil(s.T(), resp.Selected)
	assert.Equal(s.T(), "DEU", *resp.Selected)
	assert.Nil(s.T(), resp.Camera)
}

func (s *ServerSuite) TestClick_HiddenCountryClearsSelection() {
	body := `{"iso3":"FRA","lng_lat":{"lng":2.3,"lat":48.8},"zoom":5}`
	rec := s.do(http.MethodPost, "/api/sensors/open-area/click?q=fcc&selected=USA", []byte(body))
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp clickResponse
	s.decode(rec, &resp)
	assert.Nil(s.T(), resp.Selected)
	require.NotNil(s.T(), resp.Camera)
	assert.Equal(s.T(), 5.0, resp.Camera.Zoom)
}

func (s *ServerSuite) TestClick_InvalidJSON() {
	rec := s.do(http.MethodPost, "/api/sensors/open-area/click", []byte("not json"))
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)

	var body errorBody
	s.decode(rec, &body)
	assert.Equal(s.T(), "bad_request", body.Error)
}

func (s *ServerSuite) TestFocus() {
	fc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"iso_3166_1_alpha_3":"CHL"},"geometry":{"type":"Polygon","coordinates":[[[-75,-55],[-66,-55],[-66,-17],[-75,-17],[-75,-55]]]}},
		{"type":"Feature","properties":{"iso_3166_1_alpha_3":"ARG"},"geometry":{"type":"Point","coordinates":[-64,-34]}}
	]}`
	rec := s.do(http.MethodPost, "/api/map/focus?iso3=chl", []byte(fc))
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var fit mapview.Fit
	s.decode(rec, &fit)
	assert.Equal(s.T(), [2][2]float64{{-75, -55}, {-66, -17}}, fit.Bounds)
	assert.Equal(s.T(), mapview.FitPadding, fit.Padding)

	rec = s.do(http.MethodPost, "/api/map/focus?iso3=FRA", []byte(fc))
	assert.Equal(s.T(), http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/map/focus?iso3=CHL", []byte("{"))
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestFocus_RequiresCountry() {
	fc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"iso_3166_1_alpha_3":"DEU"},"geometry":{"type":"Point","coordinates":[10,51]}}
	]}`
	rec := s.do(http.MethodPost, "/api/map/focus", []byte(fc))
	require.Equal(s.T(), http.StatusBadRequest, rec.Code)

	var body errorBody
	s.decode(rec, &body)
	assert.Equal(s.T(), "bad_request", body.Error)
	assert.Contains(s.T(), body.Description, "iso3")
}

func (s *ServerSuite) TestPageJSON() {
	rec := s.do(http.MethodGet, "/api/page?sensor=waffle&selected=GBR", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var page struct {
		Heading string `json:"heading"`
		Detail  struct {
			Title string `json:"title"`
			Notes string `json:"notes"`
		} `json:"detail"`
		Map struct {
			Enabled bool   `json:"enabled"`
			Token   string `json:"access_token"`
		} `json:"map"`
	}
	s.decode(rec, &page)
	assert.Equal(s.T(), "Waffle sensors", page.Heading)
	assert.Equal(s.T(), "United Kingdom", page.Detail.Title)
	assert.NotEmpty(s.T(), page.Detail.Notes)
	assert.True(s.T(), page.Map.Enabled)
	assert.Empty(s.T(), page.Map.Token, "token must not be serialized")
}

func (s *ServerSuite) TestPageHTML_WithMap() {
	rec := s.do(http.MethodGet, "/?sensor=entry&q=chile", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Header().Get("Content-Type"), "text/html")

	html := rec.Body.String()
	assert.Contains(s.T(), html, "Entry sensors")
	assert.Contains(s.T(), html, "Chile")
	assert.NotContains(s.T(), html, ">France<")
	assert.Contains(s.T(), html, "mapbox-gl.js")
	assert.Contains(s.T(), html, mapview.FillLayerID)
}

func (s *ServerSuite) TestPageHTML_SelectionFitsCameraAfterLoad() {
	rec := s.do(http.MethodGet, "/?sensor=entry&selected=fra", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(s.T(), html, `"selected":"FRA"`)
	assert.Contains(s.T(), html, "/api/map/focus?iso3=")
	assert.Contains(s.T(), html, "map.fitBounds(fit.bounds")
	assert.Contains(s.T(), html, `map.once("idle", focus)`)
	assert.Contains(s.T(), html, `"initial_opacity":0.2`)
}

func (s *ServerSuite) TestPageHTML_WithoutTokenHasNoMapScript() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := New(s.store, mapview.Config{}, nil, logger).Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(s.T(), html, "Add your Mapbox token")
	assert.NotContains(s.T(), html, "mapbox-gl.js")
	assert.NotContains(s.T(), html, "api.mapbox.com")
}

func (s *ServerSuite) TestMetrics_CountsRequestsByRoute() {
	s.do(http.MethodGet, "/api/sensors/entry/countries", nil)
	s.do(http.MethodGet, "/api/sensors/nope/countries", nil)

	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("/api/sensors/{slug}/countries", "2xx")))
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("/api/sensors/{slug}/countries", "4xx")))

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.True(s.T(), strings.Contains(rec.Body.String(), "certmap_http_requests_total"))
}

// normalize turns decoded JSON arrays back into Expression values so they
// compare equal to the ones the mapview package builds.
func normalize(e mapview.Expression) mapview.Expression {
	out := make(mapview.Expression, len(e))
	for i, v := range e {
		if arr, ok := v.([]any); ok {
			out[i] = normalize(arr)
			continue
		}
		out[i] = v
	}
	return out
}
