package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/smazurov/colornode/internal/color"
	"github.com/smazurov/colornode/internal/led"
	"github.com/smazurov/colornode/ui"
)

const (
	// formField is the colour input of the picker page.
	formField = "led_color"
	// maxFormBytes caps how much of a POST body is read; the rest is ignored.
	maxFormBytes = 1024
)

func (s *Server) registerFormRoutes() {
	s.mux.Handle("GET /{$}", logHTTP(s.requireAuth(s.handlePage)))
	s.mux.Handle("POST /{$}", logHTTP(s.requireAuth(s.handleForm)))
}

// handlePage renders the picker with the stored colour.
func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, s.colors.Current(), "")
}

// handleForm applies the submitted colour. Without a led_color field nothing
// is applied and the stored colour is shown.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, s.colors.Current(), "Could not read form")
		return
	}

	var requested *color.RGB
	// A malformed pair does not discard the fields that did decode.
	values, parseErr := url.ParseQuery(string(body))
	if parseErr != nil {
		s.logger.Warn("Malformed form body", "error", parseErr)
	}
	if raw, ok := values[formField]; ok && len(raw) > 0 {
		c, hexErr := color.ParseHex(raw[0])
		if hexErr != nil {
			s.logger.Warn("Rejected form colour", "value", raw[0], "error", hexErr)
			s.renderPage(w, http.StatusBadRequest, s.colors.Current(), hexErr.Error())
			return
		}
		requested = &c
	}

	applied, err := s.colors.ApplyAndStore(led.SourceForm, requested)
	if err != nil {
		msg := "Colour stored but not applied"
		var actErr *led.ActuationError
		if errors.As(err, &actErr) {
			msg += ": " + string(actErr.Mechanism) + " failed"
		}
		s.renderPage(w, http.StatusInternalServerError, applied, msg)
		return
	}
	s.renderPage(w, http.StatusOK, applied, "")
}

func (s *Server) renderPage(w http.ResponseWriter, status int, c color.RGB, errMsg string) {
	page := ui.Page{Color: c.Hex(), Error: errMsg}
	if d, ok := s.colors.Duties(); ok {
		page.Duties = &ui.Duties{Anode: d.Anode, Cathode: d.Cathode}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := ui.Render(w, page); err != nil {
		s.logger.Error("Failed to render page", "error", err)
	}
}
