package ports

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// DomainSuffixes are the sites allowed to call the API from a browser, including their subdomains
type DomainSuffixes struct {
	suffixes       []string
	allowLocalhost bool
}

func NewDomainSuffixes(suffixes ...string) (*DomainSuffixes, error) {
	for _, suffix := range suffixes {
		if suffix == "" {
			return nil, fmt.Errorf("domain suffix must not be empty")
		}
		if strings.HasPrefix(suffix, ".") {
			return nil, fmt.Errorf("domain suffix %s should not start with a dot", suffix)
		}
		if strings.Contains(suffix, "://") {
			return nil, fmt.Errorf("domain suffix %s should not contain a scheme", suffix)
		}
		if strings.ContainsAny(suffix, "/:") {
			return nil, fmt.Errorf("domain suffix %s should be a bare host", suffix)
		}
	}
	return &DomainSuffixes{
		suffixes: slices.Clone(suffixes),
	}, nil
}

// WithLocalhost additionally allows http://localhost on any port, for running the web client locally
func (suffixes *DomainSuffixes) WithLocalhost() *DomainSuffixes {
	return &DomainSuffixes{
		suffixes:       suffixes.suffixes,
		allowLocalhost: true,
	}
}

func (suffixes *DomainSuffixes) AnyMatch(origin string) bool {
	if suffixes.allowLocalhost && isLocalhostOrigin(origin) {
		return true
	}
	return slices.ContainsFunc(suffixes.suffixes, func(suffix string) bool {
		return originMatchesSuffix(origin, suffix)
	})
}

// originMatchesSuffix accepts https origins on the suffix itself or any of its subdomains
func originMatchesSuffix(origin string, suffix string) bool {
	host, ok := strings.CutPrefix(origin, "https://")
	if !ok {
		return false
	}
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

func isLocalhostOrigin(origin string) bool {
	host, ok := strings.CutPrefix(origin, "http://localhost")
	if !ok {
		return false
	}
	if host == "" {
		return true
	}
	port, ok := strings.CutPrefix(host, ":")
	if !ok || port == "" {
		return false
	}
	_, err := strconv.ParseUint(port, 10, 16)
	return err == nil
}

func BuildCORSMiddleware(allowedSuffixes *DomainSuffixes) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowedSuffixes.AnyMatch(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", "X-Correlation-Id")
				w.Header().Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					w.Header().Set("Access-Control-Allow-Methods", "GET")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id")
					w.Header().Set("Access-Control-Max-Age", "3600")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			next(w, r)
		}
	}
}

func BuildCORSHandler(allowedSuffixes *DomainSuffixes) http.HandlerFunc {
	return BuildCORSMiddleware(allowedSuffixes)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
