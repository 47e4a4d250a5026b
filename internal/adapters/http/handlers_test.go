package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	handler "github.com/samirrijal/hotspotmap/internal/adapters/http"
	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
)

// ---- Mock source ----

type mockSource struct {
	loadFn func(ctx context.Context) (*domain.Dataset, error)
}

func (m *mockSource) Load(ctx context.Context) (*domain.Dataset, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return testDataset(), nil
}

var testColumns = []string{"OBJECTID", "TYPE", "BORO", "PROVIDER", "LON", "LAT"}

func testDataset() *domain.Dataset {
	row := func(typ, boro, provider, lon, lat string) domain.Row {
		return domain.Row{"TYPE": typ, "BORO": boro, "PROVIDER": provider, "LON": lon, "LAT": lat}
	}
	return &domain.Dataset{
		Columns: testColumns,
		Rows: []domain.Row{
			row("Free", "Manhattan", "LinkNYC", "-73.9", "40.7"),
			row("Free", "Manhattan", "LinkNYC", "-73.91", "40.71"),
			row("Free", "Brooklyn", "SPECTRUM", "-73.95", "40.65"),
			row("Limited Free", "Queens", "Other", "-73.8", "40.7"),
		},
	}
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func loadedCharts(t *testing.T, src *mockSource) *usecases.ChartService {
	t.Helper()
	svc := usecases.NewChartService(usecases.NewLoaderService(src), nil, 60)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return svc
}

func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	t.Helper()
	d := &handler.Dependencies{
		Charts: loadedCharts(t, &mockSource{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Dataset handler tests ----

func TestListDatasets_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result []domain.DatasetSummary
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(result))
	}
	if result[0].Slug != "free" || result[0].Rows != 3 {
		t.Errorf("unexpected free summary %+v", result[0])
	}
	if result[1].Slug != "limited-free" || result[1].Rows != 1 {
		t.Errorf("unexpected limited free summary %+v", result[1])
	}
}

func TestListDatasets_NotLoaded(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Charts = usecases.NewChartService(usecases.NewLoaderService(&mockSource{}), nil, 60)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/datasets", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestHotspots_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets/free/hotspots?offset=1&limit=1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Hotspot `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 1 || result.Data[0].RowID != 1 {
		t.Errorf("expected row 1 alone, got %+v", result.Data)
	}
	if result.Data[0].Location.Lon != -73.91 {
		t.Errorf("expected parsed longitude, got %v", result.Data[0].Location.Lon)
	}

	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header, got %s", rel, link)
		}
	}
}

func TestHotspots_LimitClamped(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets/free/hotspots?limit=5000&offset=-3", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result handler.PaginatedResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Limit != 100 || result.Pagination.Offset != 0 {
		t.Errorf("expected default page, got %+v", result.Pagination)
	}
}

func TestHotspots_LinkKeepsQuery(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets/free/hotspots?limit=1&name=Paid", nil)
	resp, _ := app.Test(req, -1)

	link := resp.Header.Get("Link")
	if !strings.Contains(link, "offset=1&limit=1&name=Paid>; rel=\"next\"") {
		t.Errorf("expected next link to keep name, got %s", link)
	}
}

func TestHotspots_UnknownCategory(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets/partner-site/hotspots", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %q", apiErr.Code)
	}
}

func TestStats_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/datasets/free/stats", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats domain.DistributionStats
	json.NewDecoder(resp.Body).Decode(&stats)
	if stats.MaxBoroughCount != 2 || stats.MaxProviderCount != 2 {
		t.Errorf("expected maxima 2/2, got %d/%d", stats.MaxBoroughCount, stats.MaxProviderCount)
	}
	if len(stats.Boroughs) != 2 || stats.Boroughs[0].Key != "Manhattan" {
		t.Errorf("unexpected borough counts %v", stats.Boroughs)
	}
}

// ---- Chart handler tests ----

func TestChart_JSON(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var spec struct {
		Schema  string `json:"$schema"`
		HConcat []struct {
			Title   string            `json:"title"`
			VConcat []json.RawMessage `json:"vconcat"`
			Layer   []json.RawMessage `json:"layer"`
		} `json:"hconcat"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &spec); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(spec.Schema, "vega-lite") {
		t.Errorf("unexpected schema %q", spec.Schema)
	}
	if len(spec.HConcat) != 2 || len(spec.HConcat[0].VConcat) != 2 || len(spec.HConcat[1].Layer) != 2 {
		t.Fatalf("unexpected layout %+v", spec.HConcat)
	}
	if spec.HConcat[0].Title != "Free Hotspot Distribution" {
		t.Errorf("expected default title from category, got %q", spec.HConcat[0].Title)
	}
}

func TestChart_CustomName(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/limited-free?name=Paid", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), `"Paid Hotspot Distribution"`) {
		t.Error("expected custom title in spec")
	}
}

func TestChart_Protobuf(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	req.Header.Set("Accept", "application/x-protobuf")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
		t.Errorf("expected protobuf content type, got %q", ct)
	}

	var st structpb.Struct
	if err := proto.Unmarshal(readBody(t, resp.Body), &st); err != nil {
		t.Fatalf("decode struct: %v", err)
	}
	if _, ok := st.Fields["hconcat"]; !ok {
		t.Error("expected hconcat in protobuf struct")
	}
}

func TestChart_MissingColumnIs422(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Charts = loadedCharts(t, &mockSource{loadFn: func(ctx context.Context) (*domain.Dataset, error) {
			return &domain.Dataset{
				Columns: []string{"TYPE", "BORO", "PROVIDER", "LON"},
				Rows:    []domain.Row{{"TYPE": "Free", "BORO": "Bronx", "PROVIDER": "LinkNYC", "LON": "-73.9"}},
			}, nil
		}})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "unprocessable_entity" || !strings.Contains(apiErr.Message, "LAT") {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestChart_CacheControlHeader(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	resp, _ := app.Test(req, -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=600" {
		t.Errorf("expected chart cache control, got %q", cc)
	}
}

func TestChart_ETagNotModified(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/charts/free", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestChart_ETagWildcard(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	req.Header.Set("If-None-Match", "*")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestChart_ETagDiffersByFormat(t *testing.T) {
	app := setupApp(makeDeps(t))

	jsonResp, _ := app.Test(httptest.NewRequest("GET", "/v1/charts/free", nil), -1)

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	req.Header.Set("Accept", "application/x-protobuf")
	protoResp, _ := app.Test(req, -1)

	if jsonResp.Header.Get("ETag") == protoResp.Header.Get("ETag") {
		t.Error("expected distinct ETags for JSON and protobuf")
	}
	if !strings.Contains(protoResp.Header.Get("Vary"), "Accept") {
		t.Errorf("expected Vary: Accept, got %q", protoResp.Header.Get("Vary"))
	}
}

// ---- View handler tests ----

func TestChartView_FilteredByBorough(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/view?filter_value=Brooklyn&hover_panel=boroughs&hover_key=Brooklyn", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var view domain.ChartView
	json.NewDecoder(resp.Body).Decode(&view)
	if len(view.Boroughs) != 2 {
		t.Errorf("expected both borough bars, got %d", len(view.Boroughs))
	}
	if len(view.Providers) != 1 || view.Providers[0].Key != "SPECTRUM" {
		t.Errorf("expected only SPECTRUM, got %v", view.Providers)
	}
	if len(view.Points) != 1 {
		t.Errorf("expected 1 point, got %d", len(view.Points))
	}
	if view.Filter == nil || view.Filter.Field != "BORO" {
		t.Errorf("expected BORO filter, got %v", view.Filter)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "private, max-age=0" {
		t.Errorf("expected private cache control, got %q", cc)
	}
}

func TestChartView_BadPanel(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/view?hover_panel=ssid&hover_key=x", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestChartView_UnknownFilterField(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/view?filter_field=SSID&filter_value=x", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

// ---- PNG handler tests ----

func TestChartPNG_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/boroughs.png", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if body := readBody(t, resp.Body); !strings.HasPrefix(string(body), "\x89PNG") {
		t.Error("expected PNG body")
	}
}

func TestChartPNG_UnknownPanel(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/map.png", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestChartPNG_NoBars(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/charts/free/providers.png?filter_value=Staten%20Island", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Chart(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"query":"{ chart(category: \"free\") { title stats { max_borough_count } } datasets { slug rows } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Chart struct {
				Title string `json:"title"`
				Stats struct {
					MaxBoroughCount int `json:"max_borough_count"`
				} `json:"stats"`
			} `json:"chart"`
			Datasets []struct {
				Slug string `json:"slug"`
				Rows int    `json:"rows"`
			} `json:"datasets"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected graphql errors: %s", result.Errors[0])
	}
	if result.Data.Chart.Title != "Free Hotspot Distribution" {
		t.Errorf("unexpected title %q", result.Data.Chart.Title)
	}
	if result.Data.Chart.Stats.MaxBoroughCount != 2 {
		t.Errorf("expected max borough count 2, got %d", result.Data.Chart.Stats.MaxBoroughCount)
	}
	if len(result.Data.Datasets) != 2 {
		t.Errorf("expected 2 datasets, got %d", len(result.Data.Datasets))
	}
}

func TestGraphQL_UnknownCategory(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"query":"{ stats(category: \"paid\") { max_borough_count } }"}`
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0].Message, "unknown hotspot category") {
		t.Errorf("expected unknown category error, got %+v", result.Errors)
	}
}

// ---- Health handler tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_Loaded(t *testing.T) {
	// DB, NATS, Cache are nil → not configured, which does not fail readiness
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_NotLoaded(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Charts = usecases.NewChartService(usecases.NewLoaderService(&mockSource{
			loadFn: func(ctx context.Context) (*domain.Dataset, error) { return nil, errors.New("no such file") },
		}), nil, 60)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	v := resp.Header.Get("X-API-Version")
	if v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

// ---- WebSocket chart session ----

func TestSelectionSocket(t *testing.T) {
	app := setupApp(makeDeps(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	conn, _, err := fastws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/charts/free", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	type reply struct {
		Type  string            `json:"type"`
		View  *domain.ChartView `json:"view"`
		Error string            `json:"error"`
	}

	var initial reply
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial view: %v", err)
	}
	if initial.Type != "view" || initial.View.Filter != nil || len(initial.View.Points) != 3 {
		t.Fatalf("unexpected initial reply %+v", initial)
	}

	if err := conn.WriteJSON(map[string]string{"type": "click", "panel": "boroughs", "key": "Manhattan"}); err != nil {
		t.Fatal(err)
	}
	var clicked reply
	if err := conn.ReadJSON(&clicked); err != nil {
		t.Fatalf("read clicked view: %v", err)
	}
	if clicked.View == nil || clicked.View.Filter == nil || clicked.View.Filter.Value != "Manhattan" {
		t.Fatalf("expected Manhattan filter, got %+v", clicked)
	}
	if len(clicked.View.Points) != 2 {
		t.Errorf("expected 2 Manhattan points, got %d", len(clicked.View.Points))
	}

	if err := conn.WriteJSON(map[string]string{"type": "wave"}); err != nil {
		t.Fatal(err)
	}
	var bad reply
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("read error reply: %v", err)
	}
	if bad.Type != "error" {
		t.Errorf("expected error reply, got %+v", bad)
	}
}

func TestSelectionSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/ws/charts/free", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

// TestAccessLogMiddleware verifies one structured line is written per request.
func TestAccessLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/v1/charts/:category", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/v1/charts/free", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if line["route"] != "/v1/charts/:category" || line["category"] != "free" {
		t.Errorf("unexpected log line %v", line)
	}
	if line["status"] != float64(200) {
		t.Errorf("expected status 200 in log, got %v", line["status"])
	}
}
