package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// corsPolicy holds the rendered CORS response headers. The device sits on a
// local network and the picker may be opened from any origin.
type corsPolicy struct {
	headers map[string]string
}

func newCORSPolicy(origin string, methods, headers []string, maxAge int) corsPolicy {
	return corsPolicy{headers: map[string]string{
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Methods": strings.Join(methods, ", "),
		"Access-Control-Allow-Headers": strings.Join(headers, ", "),
		"Access-Control-Max-Age":       strconv.Itoa(maxAge),
	}}
}

func defaultCORSPolicy() corsPolicy {
	return newCORSPolicy("*",
		[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		[]string{"Content-Type", "Authorization", "Accept", "Origin"},
		86400)
}

// middleware adds the headers to huma responses.
func (p corsPolicy) middleware(ctx huma.Context, next func(huma.Context)) {
	for k, v := range p.headers {
		ctx.SetHeader(k, v)
	}
	if ctx.Method() == http.MethodOptions {
		ctx.SetStatus(http.StatusNoContent)
		return
	}
	next(ctx)
}

// registerPreflight answers OPTIONS on every path. huma only sees requests
// whose route matched, so preflights need a mux handler.
func (p corsPolicy) registerPreflight(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
		for k, v := range p.headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
