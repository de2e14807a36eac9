package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bchttp "github.com/MrJamesThe3rd/bluecarbon/internal/http"
	"github.com/MrJamesThe3rd/bluecarbon/internal/export"
	authHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/export"
	intakeHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/intake"
	reportHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/report"
	submissionHandler "github.com/MrJamesThe3rd/bluecarbon/internal/http/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/metrics"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
	"github.com/MrJamesThe3rd/bluecarbon/internal/verification"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := store.NewMemory()
	recorder := ledger.NewRecorder(mem)
	reg := prometheus.NewRegistry()

	submissions := submission.NewService(mem, recorder, submission.WithMetrics(metrics.New(reg)))
	tokens := identity.NewJWTProvider("test-signing-key", "bluecarbon-test")

	router := bchttp.New(
		tokens,
		authHandler.NewHandler(identity.DemoDirectory(), tokens, time.Hour),
		submissionHandler.NewHandler(submissions, verification.NewRules(0, decimal.Zero)),
		intakeHandler.NewHandler(intake.NewService(submissions)),
		reportHandler.NewHandler(report.NewService(mem, recorder), recorder),
		exportHandler.NewHandler(export.NewService(mem)),
		bchttp.Options{
			AllowedOrigins: []string{"http://localhost:5173"},
			Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, rdr)
	require.NoError(c.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.send(req)
}

func (c *client) send(req *http.Request) (*http.Response, map[string]any) {
	c.t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}

	return resp, out
}

func login(t *testing.T, srv *httptest.Server, email string) *client {
	t.Helper()

	c := &client{t: t, base: srv.URL}

	resp, body := c.do(http.MethodPost, "/api/v1/auth/token", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	c.token = body["access_token"].(string)

	return c
}

func TestAPI_Lifecycle(t *testing.T) {
	srv := newServer(t)

	ngo := login(t, srv, "ngo@example.com")
	verifier := login(t, srv, "verifier@example.com")
	admin := login(t, srv, "admin@example.com")

	resp, created := ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Mangrove Restoration",
		"location":        "-1.2921,36.8219",
		"collection_date": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", created["state"])
	assert.Equal(t, "Ocean Conservation NGO", created["submitted_by"])

	id := created["id"].(string)
	path := "/api/v1/submissions/" + id

	resp, verified := verifier.do(http.MethodPost, path+"/transitions", map[string]any{
		"event":        "verify-confirm",
		"carbon_value": 150,
		"rationale":    "canopy matches imagery",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "verified", verified["state"])

	resp, _ = ngo.do(http.MethodPost, path+"/transitions", map[string]any{"event": "issue-credits"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, issued := admin.do(http.MethodPost, path+"/transitions", map[string]any{"event": "issue-credits"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "issued", issued["state"])

	issuance := issued["issuance"].(map[string]any)
	assert.True(t, strings.HasPrefix(issuance["issuance_ref"].(string), "0x"))

	resp, _ = admin.do(http.MethodPost, path+"/transitions", map[string]any{"event": "issue-credits"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = verifier.do(http.MethodPatch, path+"/carbon-value", map[string]any{"carbon_value": 10})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, summary := admin.do(http.MethodGet, "/api/v1/reports/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "150", summary["total_issued"])
	assert.Equal(t, "150", summary["ledger_total"])

	resp, recon := admin.do(http.MethodGet, "/api/v1/reports/reconciliation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, recon["consistent"])
}

func TestAPI_Ledger(t *testing.T) {
	srv := newServer(t)

	ngo := login(t, srv, "ngo@example.com")
	verifier := login(t, srv, "verifier@example.com")
	admin := login(t, srv, "admin@example.com")

	_, created := ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Seagrass Restoration Initiative",
		"location":        "2.0469,45.3182",
		"collection_date": "2024-01-08",
		"carbon_value":    "200",
	})
	path := "/api/v1/submissions/" + created["id"].(string)

	resp, _ := verifier.do(http.MethodPost, path+"/transitions", map[string]any{"event": "verify-confirm"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = admin.do(http.MethodPost, path+"/transitions", map[string]any{"event": "issue-credits"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/ledger", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin.token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "200", entries[0]["carbon_value"])
	assert.Equal(t, "admin@example.com", entries[0]["issued_by"])
}

func TestAPI_Errors(t *testing.T) {
	srv := newServer(t)

	anon := &client{t: t, base: srv.URL}

	resp, _ := anon.do(http.MethodGet, "/api/v1/submissions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = anon.do(http.MethodPost, "/api/v1/auth/token", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	forged := &client{t: t, base: srv.URL, token: "not-a-jwt"}
	resp, _ = forged.do(http.MethodGet, "/api/v1/submissions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	verifier := login(t, srv, "verifier@example.com")

	resp, _ = verifier.do(http.MethodGet, "/api/v1/submissions?state=flagged", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = verifier.do(http.MethodGet, "/api/v1/submissions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = verifier.do(http.MethodGet, "/api/v1/submissions/6f1c1f7e-2b47-4a8e-9a57-2a8d6a1f0c11", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = verifier.do(http.MethodPost, "/api/v1/submissions", map[string]any{"project_name": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ngo := login(t, srv, "ngo@example.com")

	resp, _ = ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{"project_name": "X", "location": "100,0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Mangrove Restoration",
		"location":        "-1.2921,36.8219",
		"collection_date": "2024-01-15",
		"submitted_by":    "Blue Ocean Trust",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_Assessment(t *testing.T) {
	srv := newServer(t)

	ngo := login(t, srv, "ngo@example.com")
	verifier := login(t, srv, "verifier@example.com")

	_, created := ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Future Project",
		"location":        "0,0",
		"collection_date": time.Now().AddDate(1, 0, 0).Format(time.DateOnly),
		"carbon_value":    "10",
	})

	resp, assessed := verifier.do(http.MethodPost, "/api/v1/submissions/"+created["id"].(string)+"/assessments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", assessed["state"])

	decision := assessed["decision"].(map[string]any)
	assert.Equal(t, "data_inconsistent", decision["reason"])
}

func TestAPI_IntakeCSV(t *testing.T) {
	srv := newServer(t)
	ngo := login(t, srv, "ngo@example.com")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "sites.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte("Project Name,Location,Collection Date\nMangrove,\"-1.2921,36.8219\",2024-01-15\nBroken,\"0,0\",someday\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/intake/csv", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ngo.token)

	resp, body := ngo.send(req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, body["imported"])

	failed := body["failed"].([]any)
	require.Len(t, failed, 1)
	assert.EqualValues(t, 3, failed[0].(map[string]any)["line"])
}

func TestAPI_Export(t *testing.T) {
	srv := newServer(t)

	ngo := login(t, srv, "ngo@example.com")
	verifier := login(t, srv, "verifier@example.com")
	admin := login(t, srv, "admin@example.com")

	_, created := ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Seagrass Restoration Initiative",
		"location":        "2.0469,45.3182",
		"collection_date": "2024-01-08",
		"carbon_value":    "200",
	})
	path := "/api/v1/submissions/" + created["id"].(string)

	verifier.do(http.MethodPost, path+"/transitions", map[string]any{"event": "verify-confirm"})
	admin.do(http.MethodPost, path+"/transitions", map[string]any{"event": "issue-credits"})

	resp, meta := admin.do(http.MethodPost, "/api/v1/exports", map[string]any{"state": "issued"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := meta["items"].([]any)
	require.Len(t, items, 1)
	assert.True(t, strings.HasPrefix(items[0].(map[string]any)["issuance_ref"].(string), "0x"))
	assert.Contains(t, meta["statement"], "Credits issued: 200 t across 1 submissions")

	resp, _ = admin.do(http.MethodPost, "/api/v1/exports", map[string]any{"state": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/exports/download", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin.token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/zip", res.Header.Get("Content-Type"))

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"submissions.csv", "ledger.csv", "statement.txt"}, names)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ngo := login(t, srv, "ngo@example.com")
	ngo.do(http.MethodPost, "/api/v1/submissions", map[string]any{
		"project_name":    "Mangrove",
		"location":        "0,0",
		"collection_date": "2024-01-15",
	})

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "bluecarbon_submissions_created_total 1")
}
