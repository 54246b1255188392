package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HugoHonorez/sensora/internal/export"
	"github.com/HugoHonorez/sensora/internal/infrastructure/mqtt"
	"github.com/HugoHonorez/sensora/internal/query"
	"github.com/HugoHonorez/sensora/internal/realtime"
)

// FilterResponse is the body of GET /filter.
type FilterResponse struct {
	Current  query.Filter `json:"current"`
	Defaults query.Filter `json:"defaults"`
}

// QueryResponse is returned when a query request was sent.
type QueryResponse struct {
	Filter  query.Filter  `json:"filter"`
	Request query.Request `json:"request"`
}

// QueryDroppedResponse is the 503 body of a query that could not be sent.
type QueryDroppedResponse struct {
	Error
	Filter query.Filter `json:"filter"`
}

// PowerRequest is the optional body of POST /sensors/{sensor}/power.
// An empty body presses the control as currently rendered.
type PowerRequest struct {
	State string `json:"state"`
}

// PowerResponse reports the published command.
type PowerResponse struct {
	Sensor string         `json:"sensor"`
	State  realtime.State `json:"state"`
	Topic  string         `json:"topic"`
}

func (s *Server) handleGetCharts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.charts.Snapshot())
}

func (s *Server) handleGetReadout(w http.ResponseWriter, _ *http.Request) {
	view, ok := s.realtime.Current()
	if !ok {
		writeNotFound(w, "no reading received yet")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FilterResponse{
		Current:  s.queries.Current(),
		Defaults: s.queries.Defaults(),
	})
}

// handleQuery makes the posted filter current and sends it upstream.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var f query.Filter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	req, err := s.queries.Submit(f)
	s.writeQueryResult(w, req, err)
}

// handleQueryReset restores the default filter and sends one query.
func (s *Server) handleQueryReset(w http.ResponseWriter, _ *http.Request) {
	req, err := s.queries.Reset()
	s.writeQueryResult(w, req, err)
}

func (s *Server) writeQueryResult(w http.ResponseWriter, req query.Request, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, QueryResponse{Filter: s.queries.Current(), Request: req})
	case errors.Is(err, query.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, query.ErrNotOpen):
		// The filter is current even though nothing was sent.
		writeJSON(w, http.StatusServiceUnavailable, QueryDroppedResponse{
			Error: Error{
				Status:  http.StatusServiceUnavailable,
				Code:    ErrCodeChannelClosed,
				Message: "query channel is not open; request dropped",
			},
			Filter: s.queries.Current(),
		})
	default:
		s.logger.Error("query send failed", "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "query send failed")
	}
}

func (s *Server) handleListSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sensors": s.realtime.Renderer().Sensors(),
	})
}

// handleSensorPower publishes ON or OFF for a switchable sensor.
func (s *Server) handleSensorPower(w http.ResponseWriter, r *http.Request) {
	sensor := chi.URLParam(r, "sensor")

	var body PowerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var (
		state realtime.State
		err   error
	)
	if body.State == "" {
		state, err = s.realtime.Press(sensor)
	} else {
		state, err = realtime.ParseState(body.State)
		if err == nil {
			err = s.realtime.PublishPower(sensor, state)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, realtime.ErrUnknownSensor):
		writeNotFound(w, "unknown sensor: "+sensor)
		return
	case errors.Is(err, realtime.ErrInvalidState):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "state must be ON or OFF")
		return
	case errors.Is(err, realtime.ErrNoReading):
		writeError(w, http.StatusConflict, ErrCodeConflict, "no reading received yet; state is required")
		return
	case errors.Is(err, realtime.ErrNotAttached), errors.Is(err, mqtt.ErrNotConnected):
		writeError(w, http.StatusServiceUnavailable, ErrCodeChannelClosed, "broker is not connected")
		return
	default:
		s.logger.Error("power command failed", "sensor", sensor, "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "publish failed")
		return
	}

	ps, _ := s.realtime.Renderer().Sensor(sensor)
	writeJSON(w, http.StatusAccepted, PowerResponse{Sensor: sensor, State: state, Topic: ps.Topic})
}

// handleExport renders the current charts as data.csv, data.xlsx or data.pdf.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFilename(chi.URLParam(r, "filename"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	data, err := s.exporter.Render(format)
	if err != nil {
		s.logger.Error("export failed", "format", format, "error", err)
		writeInternalError(w, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}
