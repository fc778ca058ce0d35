package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/storage/memory"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/internal/worker"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	reg := registry.New(nil,
		registry.WithIDs(&maneuver.SequenceIDs{}),
		registry.WithProfiles([]registry.Profile{{Vehicle: "usv-2", Kinds: []string{"Goto", "Loiter"}}}),
	)
	backend := memory.New(config.MemoryConfig{}, nil)
	require.NoError(t, backend.Init())
	templates := cache.NewTemplates(backend, reg, 8, nil)
	w := worker.NewManager(worker.Dependencies{Registry: reg, Workers: 2})

	srv := httptest.NewServer(NewServer(reg, templates, w, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL)
}

func gotoDocument(t *testing.T) []byte {
	t.Helper()
	g := maneuver.NewGoto(nil)
	g.SetLocation(core.NewLocation(41, -8).WithZ(10, core.ZDepth))
	g.SetSpeed(core.NewSpeed(1.5, core.MetersPS))
	data, err := maneuver.ExportDocument(g)
	require.NoError(t, err)
	return data
}

func TestHealthcheck(t *testing.T) {
	_, c := newTestServer(t)
	assert.NoError(t, c.Healthcheck(context.Background()))
}

func TestTranslateRoundTrip(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	resp, err := c.Translate(ctx, gotoDocument(t), "")
	require.NoError(t, err)
	assert.Equal(t, "Goto", resp.Kind)
	assert.Equal(t, "Goto", resp.Abbrev)

	f, err := wire.UnmarshalFrame(resp.Frame)
	require.NoError(t, err)
	msg, err := f.Decode()
	require.NoError(t, err)
	g := msg.(wire.Goto)
	assert.Equal(t, 10.0, g.Z)
	assert.InDelta(t, 1.5, g.Speed, 1e-9)
	assert.Equal(t, wire.SpeedMetersPS, g.SpeedUnits)

	doc, err := c.Document(ctx, resp.Frame)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<Goto")
}

func TestTranslate_Errors(t *testing.T) {
	srv, c := newTestServer(t)
	ctx := context.Background()

	_, err := c.Translate(ctx, []byte("<node>"), "")
	assert.ErrorContains(t, err, "status 400")

	rows, err := maneuver.ExportDocument(maneuver.NewRowsPattern(nil))
	require.NoError(t, err)
	_, err = c.Translate(ctx, rows, "usv-2")
	assert.ErrorContains(t, err, "status 422")

	resp, err := http.Post(srv.URL+"/v1/wire/document", contentMsgpack, strings.NewReader("garbage"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPattern(t *testing.T) {
	_, c := newTestServer(t)

	resp, err := c.Pattern(context.Background(), "RowsPattern", nil)
	require.NoError(t, err)
	assert.Equal(t, "RowsPattern", resp.Kind)
	assert.NotEmpty(t, resp.Points)
	assert.Greater(t, resp.PathLength, 0.0)
	assert.True(t, strings.HasPrefix(resp.WKT, "LINESTRING"), resp.WKT)
	assert.Equal(t, "POINT Z (0 0 -2)", resp.Reference)
}

func TestPattern_Reference(t *testing.T) {
	_, c := newTestServer(t)

	e := maneuver.NewExpandingSquarePattern(nil)
	e.SetLocation(core.NewLocation(41, -8).WithZ(10, core.ZDepth))
	doc, err := maneuver.ExportDocument(e)
	require.NoError(t, err)

	resp, err := c.Pattern(context.Background(), "ExpandingSquarePattern", doc)
	require.NoError(t, err)
	assert.Equal(t, "POINT Z (-8 41 -10)", resp.Reference)
}

func TestPattern_TooManyPoints(t *testing.T) {
	_, c := newTestServer(t)

	r := maneuver.NewRowsPattern(nil)
	r.SetWidth(1e4)
	r.SetHStep(0.01)
	doc, err := maneuver.ExportDocument(r)
	require.NoError(t, err)

	_, err = c.Pattern(context.Background(), "RowsPattern", doc)
	assert.ErrorContains(t, err, "status 422")
	assert.ErrorContains(t, err, "point limit")
}

func TestPattern_Errors(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	_, err := c.Pattern(ctx, "Goto", nil)
	assert.ErrorContains(t, err, "status 400")

	_, err = c.Pattern(ctx, "SonarSweep", nil)
	assert.ErrorContains(t, err, "status 404")
}

func TestKinds(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	all, err := c.Kinds(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, all, "RowsPattern")

	kinds, err := c.Kinds(ctx, "usv-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Goto", "Loiter"}, kinds)
}

func TestTemplates(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, c.PutTemplate(ctx, "harbour", "usv-2", gotoDocument(t), "survey", "night"))

	list, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "harbour", list[0].Name)
	assert.Equal(t, "Goto", list[0].Kind)
	assert.Equal(t, []string{"survey", "night"}, list[0].Tags)

	doc, err := c.GetTemplate(ctx, "harbour")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<Goto")

	require.NoError(t, c.DeleteTemplate(ctx, "harbour"))
	_, err = c.GetTemplate(ctx, "harbour")
	assert.ErrorContains(t, err, "status 404")
}

func TestPlan(t *testing.T) {
	srv, c := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, c.PutTemplate(ctx, "hover", "", mustExport(t, maneuver.NewLoiter(nil))))

	body, err := json.Marshal(PlanRequest{
		Plan:      "harbour",
		Documents: []string{string(gotoDocument(t))},
		Templates: []string{"hover"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/v1/vehicles/usv-2/plan", contentJSON, bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := wire.ReadBatch(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "usv-2", b.Vehicle)
	assert.Equal(t, "harbour", b.Plan)
	require.Len(t, b.Frames, 2)
	assert.Equal(t, "Goto", b.Frames[0].Abbrev)
	assert.Equal(t, "Loiter", b.Frames[1].Abbrev)
}

func TestPlan_MissingTemplate(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/vehicles/auv-1/plan", contentJSON, strings.NewReader(`{"templates":["nope"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_WithoutLibrary(t *testing.T) {
	srv := httptest.NewServer(NewServer(registry.New(nil), nil, nil, nil).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/v1/templates")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := NewServer(registry.New(nil), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx, "127.0.0.1:0"))
}

func mustExport(t *testing.T, m maneuver.Maneuver) []byte {
	t.Helper()
	data, err := maneuver.ExportDocument(m)
	require.NoError(t, err)
	return data
}

func TestUpload_NoLink(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/vehicles/auv-1/upload", contentJSON,
		strings.NewReader(`{"plan":"p","documents":[`+jsonString(gotoDocument(t))+`]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUpload_WithUploader(t *testing.T) {
	reg := registry.New(nil, registry.WithIDs(&maneuver.SequenceIDs{}))
	s := NewServer(reg, nil, worker.NewManager(worker.Dependencies{Registry: reg}), nil)

	var got struct {
		vehicle, plan string
		docs          int
	}
	s.SetUploader(func(_ context.Context, vehicle, plan string, docs [][]byte) error {
		got.vehicle, got.plan, got.docs = vehicle, plan, len(docs)
		return nil
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/v1/vehicles/auv-1/upload", contentJSON,
		strings.NewReader(`{"plan":"harbour","documents":[`+jsonString(gotoDocument(t))+`]}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "auv-1", got.vehicle)
	assert.Equal(t, "harbour", got.plan)
	assert.Equal(t, 1, got.docs)
}

func jsonString(b []byte) string {
	data, _ := json.Marshal(string(b))
	return string(data)
}
