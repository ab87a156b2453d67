// Package api serves the indicators over http.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"indicadores-backend/internal/service"
	"indicadores-backend/internal/store"
	"indicadores-backend/internal/telemetry"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

const (
	report_api_update = "api.update"
	report_api_get    = "api.get"
)

// MessageNoData is the body of a failed update, kept in the language the clients expect.
const MessageNoData = "No se obtuvieron datos."

// Indicators is what the handlers need from service.Service.
type Indicators interface {
	UpdateAll(ctx context.Context) (service.Summary, error)
	GetValue(ctx context.Context, code string, date civil.Date) (decimal.Decimal, error)
}

type handler struct {
	indicators  Indicators
	donationURL string
	tel         telemetry.API
}

// NewRouter mounts every route under /api/indicadores.
func NewRouter(indicators Indicators, donationURL string, tel telemetry.API) http.Handler {
	h := handler{
		indicators:  indicators,
		donationURL: donationURL,
		tel:         telemetry.NewScopedAPI("api", tel),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)

	r.Route("/api/indicadores", func(r chi.Router) {
		r.Get("/disponibles", h.available)
		r.Post("/actualizar", h.update)
		r.Get("/donar", h.donate)
		r.Get("/{codigo}/{fecha}", h.get)
	})
	return r
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h handler) available(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "OK"})
}

type updateResponse struct {
	Total    int            `json:"total"`
	Detalles map[string]int `json:"detalles"`
}

func (h handler) update(w http.ResponseWriter, r *http.Request) {
	summary, err := h.indicators.UpdateAll(r.Context())
	if errors.Is(err, service.ErrNoData) {
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, MessageNoData)
		return
	}
	if err != nil {
		h.tel.ReportBroken(report_api_update, err)
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, err.Error())
		return
	}
	render.JSON(w, r, updateResponse{
		Total:    summary.Total,
		Detalles: summary.Codes,
	})
}

type valueResponse struct {
	Fecha string      `json:"fecha"`
	Valor json.Number `json:"valor"`
}

// parseDate accepts a bare date or a timestamp, only the calendar date of a timestamp is kept.
func parseDate(text string) (civil.Date, bool) {
	date, err := civil.ParseDate(text)
	if err == nil {
		return date, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		t, err := time.Parse(layout, text)
		if err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

func (h handler) get(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(chi.URLParam(r, "fecha"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	code := service.NormalizeCode(chi.URLParam(r, "codigo"))

	value, err := h.indicators.GetValue(r.Context(), code, date)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.tel.ReportBroken(report_api_get, err, code, date.String())
		render.Status(r, http.StatusInternalServerError)
		render.PlainText(w, r, err.Error())
		return
	}

	render.JSON(w, r, valueResponse{
		Fecha: civil.DateTime{Date: date}.String(),
		Valor: json.Number(value.String()),
	})
}

func (h handler) donate(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.donationURL, http.StatusFound)
}
