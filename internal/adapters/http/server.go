package httpadapter

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certmap/internal/domain"
	"certmap/internal/mapview"
	"certmap/internal/platform/metrics"
	"certmap/internal/services/catalog"
	"certmap/internal/services/dataset"
	"certmap/internal/services/shell"
)

//go:embed templates/*.html.tmpl
var templates embed.FS

const maxBodyBytes = 4 << 20

// Server exposes the widget: the HTML shell and the JSON API behind it.
type Server struct {
	store   *dataset.Store
	mapCfg  mapview.Config
	metrics *metrics.Metrics
	log     *slog.Logger
	page    *template.Template
}

func New(store *dataset.Store, mapCfg mapview.Config, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	page := template.Must(template.ParseFS(templates, "templates/page.html.tmpl"))
	return &Server{store: store, mapCfg: mapCfg, metrics: m, log: log, page: page}
}

// Routes returns a chi.Router with every handler mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.getHealthz)
	r.Get("/", s.getPage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.getDataset)
		r.Get("/page", s.getPageJSON)
		r.Get("/sensors", s.getSensors)
		r.Route("/sensors/{slug}", func(r chi.Router) {
			r.Get("/countries", s.getCountries)
			r.Get("/paint", s.getPaint)
			r.Post("/click", s.postClick)
		})
		r.Post("/map/focus", s.postFocus)
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Inc()
		}
		s.log.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sensorSummary struct {
	Slug        domain.SensorSlug `json:"slug"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Total       int               `json:"total"`
	Totals      catalog.Totals    `json:"totals"`
}

func summarize(s domain.SensorCertification) sensorSummary {
	return sensorSummary{
		Slug:        s.Slug,
		Label:       s.Label,
		Description: s.Description,
		Total:       len(s.Countries),
		Totals:      catalog.CountStatuses(s.Countries),
	}
}

type datasetResponse struct {
	Provenance  dataset.Provenance `json:"provenance"`
	Syncing     bool               `json:"syncing"`
	SyncError   string             `json:"sync_error,omitempty"`
	DroppedRows int                `json:"dropped_rows"`
	SyncedAt    *time.Time         `json:"synced_at,omitempty"`
	Sensors     []sensorSummary    `json:"sensors"`
}

func (s *Server) getDataset(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	resp := datasetResponse{
		Provenance:  snap.Provenance,
		Syncing:     snap.Syncing,
		SyncError:   snap.SyncError,
		DroppedRows: snap.DroppedRows,
	}
	if !snap.SyncedAt.IsZero() {
		resp.SyncedAt = &snap.SyncedAt
	}
	for _, sensor := range domain.SortSensors(snap.Sensors) {
		resp.Sensors = append(resp.Sensors, summarize(sensor))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSensors(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	out := make([]sensorSummary, 0, len(snap.Sensors))
	for _, sensor := range domain.SortSensors(snap.Sensors) {
		out = append(out, summarize(sensor))
	}
	writeJSON(w, http.StatusOK, out)
}

// sessionFor replays the request's query parameters on top of the sensor
// named in the path.
func (s *Server) sessionFor(r *http.Request) (dataset.Snapshot, *catalog.Session, error) {
	snap := s.store.Snapshot()
	slug := domain.SensorSlug(chi.URLParam(r, "slug"))
	if _, ok := snap.Sensor(slug); !ok {
		return snap, nil, fmt.Errorf("%w: %s", ErrUnknownSensor, slug)
	}
	values := r.URL.Query()
	values.Set("sensor", string(slug))
	return snap, catalog.ParseSession(snap.Sensors, values), nil
}

type countriesResponse struct {
	Sensor       sensorSummary                 `json:"sensor"`
	Query        string                        `json:"query"`
	SearchActive bool                          `json:"search_active"`
	Matched      int                           `json:"matched"`
	Countries    []domain.CountryCertification `json:"countries"`
	Selected     *domain.CountryCertification  `json:"selected"`
}

func (s *Server) getCountries(w http.ResponseWriter, r *http.Request) {
	_, session, err := s.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v := session.View()
	writeJSON(w, http.StatusOK, countriesResponse{
		Sensor:       summarize(v.Sensor),
		Query:        v.Query,
		SearchActive: v.SearchActive,
		Matched:      len(v.Filtered),
		Countries:    v.Filtered,
		Selected:     v.Selected,
	})
}

type paintResponse struct {
	Enabled  bool                    `json:"enabled"`
	Fallback string                  `json:"fallback,omitempty"`
	Style    *mapview.Style          `json:"style,omitempty"`
	Fills    map[string]mapview.Fill `json:"fills,omitempty"`
}

func (s *Server) getPaint(w http.ResponseWriter, r *http.Request) {
	_, session, err := s.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v := session.View()
	if !s.mapCfg.Enabled() {
		writeJSON(w, http.StatusOK, paintResponse{Fallback: mapview.FallbackNotice(v.Sensor.Label)})
		return
	}
	style := mapview.Paint(v.Sensor.Countries, v.FilteredISO, v.SearchActive, v.Hovered, session.Selected())
	writeJSON(w, http.StatusOK, paintResponse{
		Enabled: true,
		Style:   &style,
		Fills:   mapview.Fills(v.Sensor.Countries, v.FilteredISO, v.SearchActive),
	})
}

type clickResponse struct {
	Selected *string         `json:"selected"`
	Camera   *mapview.Camera `json:"camera,omitempty"`
}

func (s *Server) postClick(w http.ResponseWriter, r *http.Request) {
	_, session, err := s.sessionFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var ev mapview.ClickEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, err)
		return
	}

	view := mapview.NewView()
	view.SetCountries(session.View().Sensor.Countries)
	view.OnSelect(func(iso3 string) {
		// A country hidden by the search cannot stay selected.
		if !session.SelectCountry(iso3) {
			session.SelectCountry("")
		}
	})
	res := view.HandleClick(ev)

	resp := clickResponse{Camera: res.Camera}
	if sel := session.Selected(); sel != "" {
		resp.Selected = &sel
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postFocus(w http.ResponseWriter, r *http.Request) {
	iso3 := strings.TrimSpace(r.URL.Query().Get("iso3"))
	if iso3 == "" {
		writeError(w, fmt.Errorf("%w: iso3 is required", ErrBadRequest))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid feature collection: %v", ErrBadRequest, err))
		return
	}
	fit, ok := mapview.FocusBounds(fc, iso3)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, fit)
}

func (s *Server) getPageJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, shell.Build(snap, catalog.ParseSession(snap.Sensors, r.URL.Query()), s.mapCfg))
}

// mapClient is handed to the page script as JSON. The script registers its
// handlers once and reads paint state from the API afterwards. With a
// selection it fits the camera to the bounds returned by /api/map/focus.
type mapClient struct {
	Token          string         `json:"token"`
	Sensor         string         `json:"sensor"`
	Query          string         `json:"query"`
	Selected       string         `json:"selected"`
	StyleURL       string         `json:"style_url"`
	SourceID       string         `json:"source_id"`
	SourceURL      string         `json:"source_url"`
	SourceLayer    string         `json:"source_layer"`
	BeforeLayer    string         `json:"before_layer"`
	ISOProperty    string         `json:"iso_property"`
	Layers         map[string]any `json:"layers"`
	Camera         mapview.Camera `json:"camera"`
	MinZoom        float64        `json:"min_zoom"`
	InitialOpacity float64        `json:"initial_opacity"`
	Style          *mapview.Style `json:"style"`
}

type pageData struct {
	shell.Page
	Client *mapClient
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	session := catalog.ParseSession(snap.Sensors, r.URL.Query())
	data := pageData{Page: shell.Build(snap, session, s.mapCfg)}
	if data.Map.Enabled {
		data.Client = &mapClient{
			Token:       data.Map.AccessToken,
			Sensor:      string(data.Sensor),
			Query:       data.Query,
			Selected:    session.Selected(),
			StyleURL:    mapview.StyleURL,
			SourceID:    mapview.SourceID,
			SourceURL:   mapview.SourceURL,
			SourceLayer: mapview.SourceLayer,
			BeforeLayer: mapview.LabelBeforeLayer,
			ISOProperty: mapview.ISOProperty,
			Layers: map[string]any{
				"fill":   mapview.FillLayerID,
				"border": map[string]any{"id": mapview.BorderLayerID, "color": mapview.BorderLineColor, "width": mapview.BorderLineWidth},
				"hover":  map[string]any{"id": mapview.HoverLayerID, "color": mapview.HoverLineColor, "width": mapview.HoverLineWidth},
				"select": map[string]any{"id": mapview.SelectLayerID, "color": mapview.SelectedLineColor, "width": mapview.SelectedLineWidth},
			},
			Camera:         mapview.InitialCamera,
			MinZoom:        mapview.MinZoom,
			InitialOpacity: mapview.InitialNoDataFill,
			Style:          data.Map.Style,
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("render page", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
