package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/elijahnyp/device_panels/panels"
	"github.com/elijahnyp/device_panels/state"
	. "github.com/elijahnyp/device_panels/util"
)

const mixerConfiguringPayload = `{"power": 1, "configuring": 1, "flow_rate": 100, "max_flow_rate": 200,
	"current_flow_rate": 90, "power_draw": 100, "max_power_draw": 900,
	"ports": [{"dir": "North", "concentration": 60, "input": 1, "lock": 0},
	          {"dir": "South", "concentration": 0, "output": 1}]}`

func testHandler() http.Handler {
	server := NewPanelServer()
	registerHandlers(server)
	return server.Handler()
}

func serveRequest(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	testHandler().ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serveRequest(req)
}

func lastCommand(t *testing.T, mockClient *mockMQTTClient) Command {
	t.Helper()
	published := mockClient.publishes()
	if len(published) == 0 {
		t.Fatal("nothing published")
	}
	var cmd Command
	if err := json.Unmarshal(published[len(published)-1].payload.([]byte), &cmd); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	return cmd
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("x: %w", ErrUnknownDevice), http.StatusNotFound},
		{fmt.Errorf("x: %w", ErrUnsupportedAction), http.StatusBadRequest},
		{fmt.Errorf("x: %w", ErrNoSnapshot), http.StatusServiceUnavailable},
		{state.ErrUnknownKind, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.expected {
				t.Errorf("errorStatus(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFormField(t *testing.T) {
	if got := formField("rate", 200.0); got != "n_rate" {
		t.Errorf("formField(number) = %s", got)
	}
	if got := formField("dir", "North"); got != "p_dir" {
		t.Errorf("formField(string) = %s", got)
	}
}

func TestParamsFromForm(t *testing.T) {
	params, err := paramsFromForm(url.Values{
		"device": {"mixer1"},
		"p_dir":  {"North"},
		"n_rate": {" 42.5 "},
	})
	if err != nil {
		t.Fatalf("paramsFromForm returned error: %v", err)
	}
	if len(params) != 2 || params["dir"] != "North" || params["rate"] != 42.5 {
		t.Errorf("params = %v", params)
	}

	if _, err := paramsFromForm(url.Values{"n_rate": {"fast"}}); !errors.Is(err, ErrUnsupportedAction) {
		t.Errorf("expected bad number to be rejected, got %v", err)
	}
}

func TestHomeHandler(t *testing.T) {
	setupHost(t)
	deliver("game/mixer1", mixerPayload)

	w := serveRequest(httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Steel Stack", "mixer1", "atmos", "waiting for snapshot", "/panel?device=mixer1"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}

	w = serveRequest(httptest.NewRequest("GET", "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, expected 404", w.Code)
	}
}

func TestPanelHandler(t *testing.T) {
	setupHost(t)

	tests := []struct {
		name     string
		topic    string
		payload  string
		query    string
		status   int
		contains []string
	}{
		{"unknown device", "", "", "device=airlock", http.StatusNotFound, []string{"unknown device"}},
		{"no snapshot", "", "", "device=steel", http.StatusServiceUnavailable, []string{"no snapshot"}},
		{"mixer", "game/mixer1", mixerConfiguringPayload, "device=mixer1", http.StatusOK,
			[]string{"Gas Mixer", "North Port", `name="n_rate"`, `name="p_dir"`, "/gauge?device=mixer1"}},
		{"sensor", "game/atmos", atmosPayload, "device=atmos", http.StatusOK,
			[]string{"Tank Gases", "label=Oxygen", `name="local"`, "Show All Gases"}},
		{"material search", "game/steel", materialPayload, "device=steel&search=frame", http.StatusOK,
			[]string{"Steel Stack", "Computer frame (5 sheets)", `value="frame"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.topic != "" {
				deliver(tt.topic, tt.payload)
			}
			w := serveRequest(httptest.NewRequest("GET", "/panel?"+tt.query, nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, expected %d: %s", w.Code, tt.status, w.Body.String())
			}
			body := w.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("panel missing %q", want)
				}
			}
		})
	}
}

func TestPanelHandler_HidesZeroGases(t *testing.T) {
	setupHost(t)
	deliver("game/atmos", atmosPayload)

	w := serveRequest(httptest.NewRequest("GET", "/panel?device=atmos", nil))
	if strings.Contains(w.Body.String(), "label=Phoron") {
		t.Error("zero phoron should be hidden")
	}
	w = serveRequest(httptest.NewRequest("GET", "/panel?device=atmos&show_all=true", nil))
	if !strings.Contains(w.Body.String(), "label=Phoron") {
		t.Error("show_all should reveal zero phoron")
	}
}

func TestActHandler(t *testing.T) {
	mockClient := setupHost(t)
	deliver("game/mixer1", mixerConfiguringPayload)

	w := postForm("/act", url.Values{
		"device": {"mixer1"},
		"action": {"set_flow_rate"},
		"n_rate": {"500"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, expected 303: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/panel?device=mixer1" {
		t.Errorf("Location = %s", loc)
	}
	cmd := lastCommand(t, mockClient)
	if cmd.Action != "set_flow_rate" || cmd.Params["rate"] != 200.0 {
		t.Errorf("expected rate clamped to 200, got %+v", cmd)
	}

	w = postForm("/act", url.Values{
		"device":          {"mixer1"},
		"action":          {"set_concentration"},
		"p_dir":           {"North"},
		"n_concentration": {"-20"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	cmd = lastCommand(t, mockClient)
	if cmd.Params["dir"] != "North" || cmd.Params["concentration"] != 0.0 {
		t.Errorf("expected concentration clamped to 0, got %+v", cmd.Params)
	}
}

func TestActHandler_LocalToggle(t *testing.T) {
	mockClient := setupHost(t)
	w := postForm("/act", url.Values{
		"device":   {"atmos"},
		"local":    {panels.LocalShowAllGases},
		"show_all": {"false"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/panel?device=atmos&show_all=true" {
		t.Errorf("Location = %s", loc)
	}
	if len(mockClient.publishes()) != 0 {
		t.Error("local toggles must not publish")
	}
}

func TestActHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"unknown device", url.Values{"device": {"airlock"}, "action": {"power"}}, http.StatusNotFound},
		{"unsupported", url.Values{"device": {"atmos"}, "action": {"power"}}, http.StatusBadRequest},
		{"bad number", url.Values{"device": {"mixer1"}, "action": {"set_flow_rate"}, "n_rate": {"x"}}, http.StatusBadRequest},
		{"missing param", url.Values{"device": {"mixer1"}, "action": {"switch_lock"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := setupHost(t)
			w := postForm("/act", tt.form)
			if w.Code != tt.status {
				t.Errorf("status = %d, expected %d", w.Code, tt.status)
			}
			if len(mockClient.publishes()) != 0 {
				t.Error("failed commands must not publish")
			}
		})
	}

	setupHost(t)
	w := serveRequest(httptest.NewRequest("GET", "/act", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /act status = %d", w.Code)
	}
}

func TestAPIPanels(t *testing.T) {
	setupHost(t)
	deliver("game/steel", materialPayload)

	w := serveRequest(httptest.NewRequest("GET", "/api/panels", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list []DeviceSummary
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(list) != 3 || list[0].Name != "atmos" || list[1].Name != "mixer1" || list[2].Name != "steel" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Online || !list[2].Online {
		t.Errorf("online flags wrong: %+v", list)
	}
	if list[2].Title != "Steel Stack" || len(list[1].Actions) != 6 {
		t.Errorf("summary fields wrong: %+v", list)
	}
}

func TestAPIPanel(t *testing.T) {
	setupHost(t)
	deliver("game/mixer1", mixerPayload)

	w := serveRequest(httptest.NewRequest("GET", "/api/panel?device=mixer1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var panel panels.Panel
	if err := json.Unmarshal(w.Body.Bytes(), &panel); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if panel.Kind != string(state.KindMixer) || panel.Width != 470 || len(panel.Sections) != 2 {
		t.Errorf("panel = %+v", panel)
	}

	for query, status := range map[string]int{
		"device=airlock": http.StatusNotFound,
		"device=steel":   http.StatusServiceUnavailable,
	} {
		w := serveRequest(httptest.NewRequest("GET", "/api/panel?"+query, nil))
		if w.Code != status {
			t.Errorf("%s status = %d, expected %d", query, w.Code, status)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s should return a JSON error, got %s", query, w.Body.String())
		}
	}
}

func TestAPIAct(t *testing.T) {
	mockClient := setupHost(t)
	deliver("game/mixer1", mixerConfiguringPayload)

	body := `{"device": "mixer1", "action": "set_concentration", "params": {"dir": "North", "concentration": 150}}`
	w := serveRequest(httptest.NewRequest("POST", "/api/act", strings.NewReader(body)))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	cmd := lastCommand(t, mockClient)
	if cmd.Params["concentration"] != 100.0 || cmd.Params["dir"] != "North" {
		t.Errorf("expected clamped concentration, got %+v", cmd.Params)
	}

	// the input for another port does not apply
	body = `{"device": "mixer1", "action": "set_concentration", "params": {"dir": "West", "concentration": 150}}`
	serveRequest(httptest.NewRequest("POST", "/api/act", strings.NewReader(body)))
	if cmd := lastCommand(t, mockClient); cmd.Params["concentration"] != 150.0 {
		t.Errorf("unmatched input should pass through, got %+v", cmd.Params)
	}

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"bad json", "POST", `{"device":`, http.StatusBadRequest},
		{"unsupported", "POST", `{"device": "mixer1", "action": "make"}`, http.StatusBadRequest},
		{"missing param", "POST", `{"device": "steel", "action": "make", "params": {"sublist": ""}}`, http.StatusBadRequest},
		{"unknown device", "POST", `{"device": "airlock", "action": "power"}`, http.StatusNotFound},
		{"wrong method", "GET", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveRequest(httptest.NewRequest(tt.method, "/api/act", strings.NewReader(tt.body)))
			if w.Code != tt.status {
				t.Errorf("status = %d, expected %d", w.Code, tt.status)
			}
		})
	}
}

func TestGaugeHandler(t *testing.T) {
	setupHost(t)
	deliver("game/atmos", atmosPayload)

	// zero gases are hidden on the panel but still drawable
	w := serveRequest(httptest.NewRequest("GET", "/gauge?device=atmos&section=Tank+Gases&label=Phoron&w=120&h=24", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s", ct)
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 24 {
		t.Errorf("bounds = %v, expected 120x24", b)
	}

	tests := []struct {
		query  string
		status int
	}{
		{"device=atmos&label=Nitrogen", http.StatusNotFound},
		{"device=airlock&label=Oxygen", http.StatusNotFound},
		{"device=steel&label=Oxygen", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		w := serveRequest(httptest.NewRequest("GET", "/gauge?"+tt.query, nil))
		if w.Code != tt.status {
			t.Errorf("%s status = %d, expected %d", tt.query, w.Code, tt.status)
		}
	}
}
