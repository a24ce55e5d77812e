package query

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func Int(r *http.Request, key string) (val int, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s must be integer", key)
	}
	return n, true, nil
}

func Bool(r *http.Request, key string) (val bool, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("%s must be boolean", key)
	}
	return b, true, nil
}

// Strings collects repeated and comma separated values of key.
func Strings(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
