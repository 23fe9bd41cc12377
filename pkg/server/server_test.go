package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/model/modeltest"
	"github.com/amlscreen/amlreport/pkg/telemetry"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, jsonutil.Unmarshal(readAll(t, resp), &body))
	return body
}

func TestReportPDF(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/v1/reports/pdf", modeltest.HighRiskJSON)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="aml-report-AML-TEST-HIGH-RISK.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	data := readAll(t, resp)
	require.NoError(t, pdfapi.Validate(bytes.NewReader(data), nil))
}

func TestReportBlocksAndMarkdown(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/v1/reports/blocks", modeltest.HighRiskJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var doc struct {
		Blocks []jsonutil.Object `json:"blocks"`
	}
	require.NoError(t, jsonutil.Unmarshal(readAll(t, resp), &doc))
	assert.NotEmpty(t, doc.Blocks)

	resp = post(t, ts.URL+"/v1/reports/markdown", modeltest.HighRiskJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(readAll(t, resp)), "# AML Screening Report")
}

func TestDeriveQuery(t *testing.T) {
	ts := newTestServer(t, Options{})
	bare := `{"report": {
		"input": {"chain": "ethereum", "address": "0xabc"},
		"decision": {"level": "MEDIUM", "score": 45, "recommendation": "REVIEW"}
	}}`

	plain := string(readAll(t, post(t, ts.URL+"/v1/reports/markdown", bare)))
	derived := string(readAll(t, post(t, ts.URL+"/v1/reports/markdown?derive=true", bare)))
	assert.NotContains(t, plain, "## KYC Assessment")
	assert.Contains(t, derived, "## KYC Assessment")
}

func TestInputShapeIs400(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/v1/reports/pdf", `{"report": {"input": {"chain": "eth", "address": "0x1"}}}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "report.decision", body.Field)
	assert.Contains(t, body.Error, "required field is missing")
	assert.Equal(t, resp.Header.Get(HeaderRequestID), body.RequestID)
}

func TestMalformedJSONIs400(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/v1/compliance/assess", `{"report":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 64})
	resp := post(t, ts.URL+"/v1/reports/pdf", modeltest.HighRiskJSON)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestAssess(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp := post(t, ts.URL+"/v1/compliance/assess", modeltest.HighRiskJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var c jsonutil.Object
	require.NoError(t, jsonutil.Unmarshal(readAll(t, resp), &c))
	for _, key := range []string{"kyc", "amlKyt", "regulatoryCooperation", "onChainMonitoring", "proofOfReserves", "auditTrail"} {
		assert.True(t, c.Has(key), key)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	ts := newTestServer(t, Options{})
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
	var body jsonutil.Object
	require.NoError(t, jsonutil.Unmarshal(readAll(t, resp), &body))
	assert.Equal(t, "ok", body.String("status", ""))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimit: 0.001, Burst: 1})

	first := post(t, ts.URL+"/v1/compliance/assess", modeltest.HighRiskJSON)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := post(t, ts.URL+"/v1/compliance/assess", modeltest.HighRiskJSON)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode, "health is not rate limited")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{Metrics: telemetry.NewMetrics()})
	readAll(t, post(t, ts.URL+"/v1/reports/blocks", modeltest.HighRiskJSON))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := string(readAll(t, resp))
	assert.Contains(t, body, `amlreport_builds_total{format="json",outcome="ok"} 1`)
	assert.Contains(t, body, `amlreport_http_requests_total{code="200",route="/v1/reports/blocks"} 1`)
}

func TestNoMetricsRouteWithoutMetrics(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArchiveRoutes(t *testing.T) {
	store, err := archive.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer store.Close()

	ts := newTestServer(t, Options{Archive: store})
	resp := post(t, ts.URL+"/v1/reports/pdf", modeltest.HighRiskJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pdf := readAll(t, resp)
	id := resp.Header.Get(HeaderArchiveRecord)
	require.NotEmpty(t, id)

	list, err := http.Get(ts.URL + "/v1/archive")
	require.NoError(t, err)
	defer list.Body.Close()
	var out struct {
		Records []archive.Record `json:"records"`
	}
	require.NoError(t, jsonutil.Unmarshal(readAll(t, list), &out))
	require.Len(t, out.Records, 1)
	assert.Equal(t, id, out.Records[0].ID)
	assert.Equal(t, archive.Hash(pdf), out.Records[0].PDFHash)

	got, err := http.Get(ts.URL + "/v1/archive/" + id)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, pdf, readAll(t, got))

	missing, err := http.Get(ts.URL + "/v1/archive/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{}).Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
