package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// MaxPageLimit caps the number of rows a single list request may return.
const MaxPageLimit = 500

// Page holds the offset and limit of a list request.
type Page struct {
	Offset int32
	Limit  int32
}

// queryInt describes an optional integer query parameter and its accepted range.
type queryInt struct {
	key      string
	fallback int32
	min      int64
	max      int64
}

// ParsePage reads the optional "offset" and "limit" query parameters.
// Missing parameters fall back to 0 and defaultLimit; invalid ones produce a 400 response.
func ParsePage(r *http.Request, w http.ResponseWriter, logger *slog.Logger, defaultLimit int32) (Page, bool) {
	params := [2]queryInt{
		{key: "offset", fallback: 0, min: 0, max: 1<<31 - 1},
		{key: "limit", fallback: defaultLimit, min: 1, max: MaxPageLimit},
	}
	var values [2]int32
	for i, p := range params {
		v, err := p.parse(r)
		if err != nil {
			logger.WarnContext(r.Context(), "Rejected pagination parameter", slog.String("param", p.key), slog.String("error", err.Error()))
			RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", p.key, r.URL.Query().Get(p.key)))
			return Page{}, false
		}
		values[i] = v
	}
	return Page{Offset: values[0], Limit: values[1]}, true
}

func (q queryInt) parse(r *http.Request) (int32, error) {
	raw := r.URL.Query().Get(q.key)
	if raw == "" {
		return q.fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < q.min || v > q.max {
		return 0, fmt.Errorf("%d is outside [%d, %d]", v, q.min, q.max)
	}
	return int32(v), nil
}
