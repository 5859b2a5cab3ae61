package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"cryptofolio/internal/timeseries"
)

const maxBodyBytes = 1 << 20

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates its tags.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return newBadRequest(errors.New("request body is empty"))
		}
		return newBadRequest(fmt.Errorf("invalid JSON body: %w", err))
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// queryID parses a required positive integer query parameter.
func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, newBadRequest(fmt.Errorf("missing query parameter %q", name))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newBadRequest(fmt.Errorf("query parameter %q must be a positive integer, got %q", name, raw))
	}
	return id, nil
}

// queryInterval parses the optional interval parameter in days.
func queryInterval(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("interval"))
	if raw == "" {
		return def, nil
	}
	return timeseries.ParseInterval(raw)
}

// queryString returns a required, trimmed query parameter.
func queryString(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", newBadRequest(fmt.Errorf("missing query parameter %q", name))
	}
	return v, nil
}
