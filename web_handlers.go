package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"image/png"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elijahnyp/device_panels/panels"
	"github.com/elijahnyp/device_panels/state"
	. "github.com/elijahnyp/device_panels/util"
	"github.com/gorilla/websocket"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"field":    formField,
	"num":      panels.FormatNumber,
	"buttonOf": buttonOf,
	"inputOf":  inputOf,
}).ParseFS(templateFS, "templates/*.html"))

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // panels are served to the game client on any origin
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Data interface{} `json:"data"`
	Type string      `json:"type"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn *websocket.Conn
	send chan WebSocketMessage
	hub  *WSHub
}

// WSHub maintains the set of active clients and broadcasts messages
type WSHub struct {
	clients    map[*WSClient]bool
	broadcast  chan WebSocketMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// DeviceSummary is one entry of the device index.
type DeviceSummary struct {
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	Kind    state.Kind `json:"kind"`
	Actions []string   `json:"actions"`
	Online  bool       `json:"online"`
	Updated int64      `json:"updated,omitempty"`
}

// ActRequest is the body of POST /api/act.
type ActRequest struct {
	Params map[string]any `json:"params"`
	Device string         `json:"device"`
	Action string         `json:"action"`
}

type panelPage struct {
	Device Device
	Panel  panels.Panel
	UI     panels.UIState
	Error  string
}

// widgetView is what the button and input templates see: one widget plus
// enough context to post back to the same panel.
type widgetView struct {
	Device string
	UI     panels.UIState
	Button panels.Button
	Input  panels.NumberInput
}

func buttonOf(p panelPage, b panels.Button) widgetView {
	return widgetView{Device: p.Device.Name, UI: p.UI, Button: b}
}

func inputOf(p panelPage, in *panels.NumberInput) widgetView {
	return widgetView{Device: p.Device.Name, UI: p.UI, Input: *in}
}

var wsHub *WSHub

func init() {
	wsHub = NewHub()
	go wsHub.Run()
}

// NewHub creates a new WebSocket hub
func NewHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WebSocketMessage, 64),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the WebSocket hub
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			Logger.Info().Msg("Client connected to WebSocket")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				Logger.Info().Msg("Client disconnected from WebSocket")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastUpdate sends an update to all connected clients
func (h *WSHub) BroadcastUpdate(messageType string, data interface{}) {
	select {
	case h.broadcast <- WebSocketMessage{Type: messageType, Data: data}:
	default:
		Logger.Debug().Msgf("websocket broadcast queue full, dropping %s", messageType)
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		if err := c.conn.Close(); err != nil {
			Logger.Debug().Err(err).Msg("Error closing WebSocket connection")
		}
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck // reset on every pong
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			Logger.Debug().Err(err).Msg("Error closing WebSocket connection")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // write fails instead
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					Logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // write fails instead
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebSocket handles websocket requests from the peer
func ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSClient{
		conn: conn,
		send: make(chan WebSocketMessage, 256),
		hub:  wsHub,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// errorStatus maps host errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownDevice):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSnapshot):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		Logger.Error().Err(err).Msgf("Error rendering %s", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		Logger.Error().Msgf("Error writing response: %v", err)
	}
}

// formField names the form input carrying a command parameter. Numeric
// parameters are prefixed n_ so they round-trip as numbers.
func formField(key string, v any) string {
	switch v.(type) {
	case float64, float32, int, int64:
		return "n_" + key
	default:
		return "p_" + key
	}
}

func uiFromRequest(r *http.Request) panels.UIState {
	showAll, _ := strconv.ParseBool(r.FormValue("show_all"))
	return panels.UIState{
		Search:       strings.TrimSpace(r.FormValue("search")),
		ShowAllGases: showAll,
	}
}

func panelURL(device string, ui panels.UIState) string {
	q := url.Values{}
	q.Set("device", device)
	if ui.Search != "" {
		q.Set("search", ui.Search)
	}
	if ui.ShowAllGases {
		q.Set("show_all", "true")
	}
	return "/panel?" + q.Encode()
}

// paramsFromForm collects p_ (text) and n_ (numeric) form fields.
func paramsFromForm(form url.Values) (map[string]any, error) {
	params := make(map[string]any)
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "p_"):
			params[strings.TrimPrefix(key, "p_")] = values[0]
		case strings.HasPrefix(key, "n_"):
			v, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s is not a number", ErrUnsupportedAction, key)
			}
			params[strings.TrimPrefix(key, "n_")] = v
		}
	}
	return params, nil
}

// clampToPanel passes numeric parameters through the matching number input
// of the device's current panel, so out-of-range values are clamped.
func clampToPanel(device, action string, params map[string]any) map[string]any {
	panel, err := renderDevice(device, panels.UIState{ShowAllGases: true})
	if err != nil {
		return params
	}
	for _, in := range numberInputs(panel) {
		if in.Action != action {
			continue
		}
		v, ok := params[in.Param].(float64)
		if !ok || !fixedMatches(in.Fixed, params) {
			continue
		}
		return in.Change(v).Params
	}
	return params
}

func numberInputs(p panels.Panel) []panels.NumberInput {
	var inputs []panels.NumberInput
	for _, s := range p.Sections {
		for _, it := range s.Items {
			if it.Input != nil {
				inputs = append(inputs, *it.Input)
			}
		}
		if s.Table == nil {
			continue
		}
		for _, row := range s.Table.Rows {
			for _, c := range row.Cells {
				if c.Input != nil {
					inputs = append(inputs, *c.Input)
				}
			}
		}
	}
	return inputs
}

func fixedMatches(fixed, params map[string]any) bool {
	for k, v := range fixed {
		if fmt.Sprint(params[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func deviceSummaries() []DeviceSummary {
	devices := model.DeviceList()
	list := make([]DeviceSummary, 0, len(devices))
	for _, d := range devices {
		s := DeviceSummary{
			Name:    d.Name,
			Title:   d.DisplayTitle(),
			Kind:    d.Kind,
			Actions: d.Kind.Actions(),
		}
		if st, ok := model.ModelStatus().Get(d.Name); ok {
			s.Online = true
			s.Updated = st.Updated
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// HomeHandler serves the device index
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderPage(w, http.StatusOK, "index.html", deviceSummaries())
}

// PanelHandler serves one rendered panel
func PanelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Bad Request Method", http.StatusMethodNotAllowed)
		return
	}
	name := r.FormValue("device")
	ui := uiFromRequest(r)
	panel, err := renderDevice(name, ui)
	if err != nil {
		dev, _ := model.FindDevice(name)
		renderPage(w, errorStatus(err), "panel.html", panelPage{
			Device: dev,
			UI:     ui,
			Error:  err.Error(),
		})
		return
	}
	dev, _ := model.FindDevice(name)
	renderPage(w, http.StatusOK, "panel.html", panelPage{Device: dev, Panel: panel, UI: ui})
}

// ActHandler takes a command from a panel form and redirects back to the
// panel. A local field toggles UI state without sending anything.
func ActHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Bad Request Method", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	device := r.PostFormValue("device")
	ui := uiFromRequest(r)
	if local := r.PostFormValue("local"); local != "" {
		http.Redirect(w, r, panelURL(device, ui.Toggle(local)), http.StatusSeeOther)
		return
	}
	params, err := paramsFromForm(r.PostForm)
	if err == nil {
		action := r.PostFormValue("action")
		err = Act(device, action, clampToPanel(device, action, params))
	}
	if err != nil {
		Logger.Warn().Msgf("panel command failed: %v", err)
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	http.Redirect(w, r, panelURL(device, ui), http.StatusSeeOther)
}

// APIPanels lists the configured devices
func APIPanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, deviceSummaries())
}

// APIPanel returns the panel view model of one device
func APIPanel(w http.ResponseWriter, r *http.Request) {
	panel, err := renderDevice(r.FormValue("device"), uiFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

// APIAct sends a JSON command to a device
func APIAct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Bad Request Method", http.StatusMethodNotAllowed)
		return
	}
	var req ActRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if err := Act(req.Device, req.Action, clampToPanel(req.Device, req.Action, req.Params)); err != nil {
		Logger.Warn().Msgf("api command failed: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// GaugeHandler draws one progress bar of a panel as a PNG
func GaugeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Bad Request Method", http.StatusMethodNotAllowed)
		return
	}
	panel, err := renderDevice(r.FormValue("device"), panels.UIState{ShowAllGases: true})
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	bar, ok := panel.FindBar(r.FormValue("section"), r.FormValue("label"))
	if !ok {
		http.Error(w, "Unknown gauge", http.StatusNotFound)
		return
	}
	width, _ := strconv.Atoi(r.FormValue("w"))
	height, _ := strconv.Atoi(r.FormValue("h"))
	if width <= 0 || width > gaugeMaxWidth {
		width = 240
	}
	if height <= 0 || height > gaugeMaxHeight {
		height = 20
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, DrawGauge(bar, width, height)); err != nil {
		http.Error(w, "Error encoding image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		Logger.Error().Msgf("Error writing image response: %v", err)
	}
}

// registerHandlers wires every endpoint onto the panel server.
func registerHandlers(server *PanelServer) {
	server.AddHandler("/", HomeHandler)
	server.AddHandler("/panel", PanelHandler)
	server.AddHandler("/act", ActHandler)
	server.AddHandler("/api/panels", APIPanels)
	server.AddHandler("/api/panel", APIPanel)
	server.AddHandler("/api/act", APIAct)
	server.AddHandler("/gauge", GaugeHandler)
	server.AddHandler("/ws", ServeWebSocket)
}
