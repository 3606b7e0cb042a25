package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/assetboard-cli/internal/analysis"
	"github.com/KaramelBytes/assetboard-cli/internal/export"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
	"github.com/KaramelBytes/assetboard-cli/internal/session"
	"github.com/KaramelBytes/assetboard-cli/internal/testutil"
)

func newTestServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, Options{MaxUploadBytes: maxUpload})
}

func newTestServerWith(t *testing.T, opt Options) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opt.Ingest = ingest.DefaultOptions()
	opt.Analysis = analysis.DefaultOptions()
	opt.Export = export.DefaultOptions()
	h := NewDatasetHandler(session.NewStore(0), opt, NewMetrics(), logger)
	srv := httptest.NewServer(NewRouter(h, logger))
	t.Cleanup(srv.Close)
	return srv
}

func upload(t *testing.T, srv *httptest.Server, name string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	resp, err := http.Post(srv.URL+"/api/datasets", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func uploadRegister(t *testing.T, srv *httptest.Server) DatasetResponse {
	t.Helper()
	resp := upload(t, srv, "register.xlsx", testutil.XLSXBytes(t, testutil.AssetRegister()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[DatasetResponse](t, resp)
}

func TestUploadAndGet(t *testing.T) {
	srv := newTestServer(t, 0)
	ds := uploadRegister(t, srv)
	assert.Len(t, ds.ID, 36)
	assert.Equal(t, 5, ds.Records)
	assert.True(t, ds.HeaderFound)
	assert.Equal(t, "Nama Satker", ds.Roles["unit"])
	assert.Empty(t, ds.Unresolved)
	assert.Equal(t, []string{"KPH Bogor", "KPH Cianjur", "KPH Garut"}, ds.Options["unit"])

	resp, err := http.Get(srv.URL + "/api/datasets/" + ds.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[DatasetResponse](t, resp)
	assert.Equal(t, ds.ID, got.ID)

	resp, err = http.Get(srv.URL + "/api/datasets/" + ds.ID + "/options")
	require.NoError(t, err)
	opts := decode[map[string][]string](t, resp)
	assert.Equal(t, []string{"2019", "2020", "2021"}, opts["year"])
}

func TestUploadRejectsBadFiles(t *testing.T) {
	srv := newTestServer(t, 0)

	resp := upload(t, srv, "data.csv", []byte("a,b\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	e := decode[APIError](t, resp)
	assert.Equal(t, "INGESTION_FAILED", e.ErrorCode)

	resp = upload(t, srv, "broken.xlsx", []byte("not a zip"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Post(srv.URL+"/api/datasets", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t, 1024)
	resp := upload(t, srv, "register.xlsx", testutil.XLSXBytes(t, testutil.AssetRegister()))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadRateLimited(t *testing.T) {
	srv := newTestServerWith(t, Options{UploadRate: 0.001, UploadBurst: 1})
	uploadRegister(t, srv)

	resp := upload(t, srv, "register.xlsx", testutil.XLSXBytes(t, testutil.AssetRegister()))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	e := decode[APIError](t, resp)
	assert.Equal(t, "RATE_LIMITED", e.ErrorCode)

	resp, err := http.Get(srv.URL + "/api/datasets")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func query(t *testing.T, srv *httptest.Server, id, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/datasets/"+id+"/query", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestQuery(t *testing.T) {
	srv := newTestServer(t, 0)
	ds := uploadRegister(t, srv)

	resp := query(t, srv, ds.ID, `{"selection":{"unit":["KPH Bogor"]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q := decode[QueryResponse](t, resp)
	assert.Equal(t, 5, q.Total)
	assert.Equal(t, 2, q.Count)
	assert.Equal(t, 2, q.Summary.Count)
	assert.Equal(t, 1050000000.0, q.Summary.ValueTotal)
	assert.Len(t, q.Rows, 2)
	assert.False(t, q.More)

	resp = query(t, srv, ds.ID, `{"selection":{"category":[]}}`)
	q = decode[QueryResponse](t, resp)
	assert.Equal(t, 0, q.Count)
	assert.Zero(t, q.Summary.ValueTotal)

	resp = query(t, srv, ds.ID, `{"limit":2,"offset":1}`)
	q = decode[QueryResponse](t, resp)
	assert.Equal(t, 5, q.Count)
	assert.Len(t, q.Rows, 2)
	assert.True(t, q.More)

	resp = query(t, srv, ds.ID, `{"limit":2,"offset":4}`)
	q = decode[QueryResponse](t, resp)
	assert.Len(t, q.Rows, 1)
	assert.False(t, q.More)

	resp = query(t, srv, ds.ID, `{"offset":9223372036854775807}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q = decode[QueryResponse](t, resp)
	assert.Empty(t, q.Rows)
	assert.False(t, q.More)

	resp, err := http.Post(srv.URL+"/api/datasets/"+ds.ID+"/query", "application/json", nil)
	require.NoError(t, err)
	q = decode[QueryResponse](t, resp)
	assert.Equal(t, 5, q.Count)

	resp = query(t, srv, ds.ID, `{"selection":{"owner":["x"]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = query(t, srv, ds.ID, `{"selection":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, 0)
	ds := uploadRegister(t, srv)

	resp, err := http.Post(srv.URL+"/api/datasets/"+ds.ID+"/export", "application/json",
		strings.NewReader(`{"selection":{"year":["2020"]}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "data_aset_filtered.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Data Filtered")
	require.NoError(t, err)
	assert.Len(t, rows, 2, "header plus the single 2020 record")
}

func TestDeleteAndNotFound(t *testing.T) {
	srv := newTestServer(t, 0)
	ds := uploadRegister(t, srv)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/datasets/"+ds.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/datasets/" + ds.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	e := decode[APIError](t, resp)
	assert.Equal(t, "DATASET_NOT_FOUND", e.ErrorCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, 0)
	uploadRegister(t, srv)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	health := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 1.0, health["datasets"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `assetboard_uploads_total{result="ok"} 1`)
	assert.Contains(t, string(body), `assetboard_ingest_warnings_total{kind="cell_coercion_skipped"} 2`)
}
