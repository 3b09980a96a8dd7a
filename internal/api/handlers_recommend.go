// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cropwise/internal/logging"
	"github.com/tomtom215/cropwise/internal/metrics"
	"github.com/tomtom215/cropwise/internal/models"
	"github.com/tomtom215/cropwise/internal/recommend"
	"github.com/tomtom215/cropwise/internal/validation"
)

// Error strings returned by /recommend.
const (
	msgNoCandidates    = "No suitable crops found"
	msgErrorLocation   = "Error processing request"
	msgInvalidBody     = "invalid request body"
	msgBodyTooLarge    = "request body too large"
	msgEngineNotLoaded = "recommendation engine not loaded"
)

// recommendRequest holds the raw inputs before numeric coercion.
type recommendRequest struct {
	District string `json:"district" validate:"max=200"`
	Taluq    string `json:"taluq" validate:"max=200"`
	SoilType string `json:"soil_type" validate:"max=200"`
	Season   string `json:"season" validate:"max=64"`
	N        string `json:"n"`
	P        string `json:"p"`
	K        string `json:"k"`
	PH       string `json:"ph"`
}

var errBodyTooLarge = errors.New(msgBodyTooLarge)

// Recommend returns the best crop and an optional alternative.
//
// 200 carries the recommendation, 404 means nothing could be ranked for the
// location and 500 reports an internal failure. All three share the
// location key.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, recommendError{Error: msgEngineNotLoaded, Location: msgErrorLocation})
		return
	}

	req, err := h.readRecommendRequest(w, r)
	if err != nil {
		status := http.StatusBadRequest
		msg := msgInvalidBody
		if errors.Is(err, errBodyTooLarge) {
			status, msg = http.StatusRequestEntityTooLarge, msgBodyTooLarge
		}
		logging.Ctx(r.Context()).Debug().Str("error", sanitizeLogValue(err.Error())).Msg("Rejected recommend request body")
		writeJSON(w, r, status, recommendError{Error: msg, Location: msgErrorLocation})
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, recommendError{Error: err.Error(), Location: msgErrorLocation})
		return
	}

	q := toQuery(r.Context(), &req)
	res, err := h.engine.Recommend(r.Context(), q)

	var nc *recommend.NoCandidatesError
	switch {
	case errors.As(err, &nc):
		writeJSON(w, r, http.StatusNotFound, recommendError{Error: msgNoCandidates, Location: nc.Location()})
	case err != nil:
		writeJSON(w, r, http.StatusInternalServerError, recommendError{Error: err.Error(), Location: msgErrorLocation})
	default:
		writeJSON(w, r, http.StatusOK, res)
	}
}

// readRecommendRequest reads the query string, then overlays a JSON,
// urlencoded or multipart body.
func (h *Handler) readRecommendRequest(w http.ResponseWriter, r *http.Request) (recommendRequest, error) {
	if r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ = mime.ParseMediaType(ct)
	}

	if r.Method == http.MethodPost && mediaType == "application/json" {
		values := valuesFromQuery(r)
		if err := decodeJSONValues(r, values); err != nil {
			return recommendRequest{}, err
		}
		return requestFromValues(values), nil
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(h.maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return recommendRequest{}, bodyError(err)
	}
	// r.Form lists body values before query values.
	values := make(map[string]string, len(r.Form))
	for key, vs := range r.Form {
		if len(vs) > 0 {
			values[strings.ToLower(key)] = vs[0]
		}
	}
	return requestFromValues(values), nil
}

func valuesFromQuery(r *http.Request) map[string]string {
	query := r.URL.Query()
	values := make(map[string]string, len(query))
	for key, vs := range query {
		if len(vs) > 0 {
			values[strings.ToLower(key)] = vs[0]
		}
	}
	return values
}

// decodeJSONValues accepts strings, numbers, booleans and null for every
// field. Numbers keep their literal text so coercion sees what was sent.
func decodeJSONValues(r *http.Request, values map[string]string) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyError(err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return bodyError(err)
	}
	for key, v := range body {
		key = strings.ToLower(key)
		switch tv := v.(type) {
		case nil:
			delete(values, key)
		case string:
			values[key] = tv
		case json.Number:
			values[key] = tv.String()
		case bool:
			values[key] = strconv.FormatBool(tv)
		default:
			values[key] = fmt.Sprint(tv)
		}
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return err
}

func requestFromValues(v map[string]string) recommendRequest {
	return recommendRequest{
		District: v["district"],
		Taluq:    v["taluq"],
		SoilType: v["soil_type"],
		Season:   v["season"],
		N:        v["n"],
		P:        v["p"],
		K:        v["k"],
		PH:       v["ph"],
	}
}

// toQuery coerces each numeric field on its own. A bad n does not reset p.
func toQuery(ctx context.Context, req *recommendRequest) models.UserQuery {
	return models.UserQuery{
		District: req.District,
		Taluq:    req.Taluq,
		SoilType: req.SoilType,
		Season:   req.Season,
		N:        coerceNutrient(ctx, "n", req.N),
		P:        coerceNutrient(ctx, "p", req.P),
		K:        coerceNutrient(ctx, "k", req.K),
		PH:       coercePH(ctx, req.PH),
	}
}

// coerceNutrient parses raw, defaulting to 0.
func coerceNutrient(ctx context.Context, field, raw string) float64 {
	v, ok := parseFinite(ctx, field, raw)
	if !ok {
		return 0
	}
	return v
}

// coercePH parses raw, defaulting to missing.
func coercePH(ctx context.Context, raw string) *float64 {
	v, ok := parseFinite(ctx, "ph", raw)
	if !ok {
		return nil
	}
	return &v
}

// parseFinite reports false for empty, malformed and non-finite input.
// Only non-empty failures count as coercions.
func parseFinite(ctx context.Context, field, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, true
	}
	metrics.RecordInputCoercion(field)
	logging.Ctx(ctx).Debug().
		Str("field", field).
		Str("value", sanitizeLogValue(raw)).
		Msg("Unparseable numeric input; using default")
	return 0, false
}
