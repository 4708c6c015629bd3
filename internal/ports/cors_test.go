package ports_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Amund211/riftlight/internal/ports"
	"github.com/stretchr/testify/require"
)

const PROD_DOMAIN_SUFFIX = "riftlight.gg"
const STAGING_DOMAIN_SUFFIX = "riftlight-web.pages.dev"

type originRule struct {
	origin  string
	allowed bool
}

func TestCORS(t *testing.T) {
	t.Parallel()
	allowedOrigins, err := ports.NewDomainSuffixes(
		PROD_DOMAIN_SUFFIX,
		STAGING_DOMAIN_SUFFIX,
	)
	require.NoError(t, err)

	cases := []originRule{
		// Prod
		{
			origin: "https://riftlight.gg",

			allowed: true,
		},
		{
			origin:  "https://www.riftlight.gg",
			allowed: true,
		},
		// Staging
		{
			origin:  "https://53bcd591.riftlight-web.pages.dev",
			allowed: true,
		},
		{
			origin:  "https://new-api.riftlight-web.pages.dev",
			allowed: true,
		},
		{
			origin:  "https://riftlight-web.pages.dev",
			allowed: true,
		},
		// Other pages
		{
			origin:  "example.com",
			allowed: false,
		},
		{
			origin:  "https://example.com",
			allowed: false,
		},
		{
			origin:  "https://www.example.com",
			allowed: false,
		},
		{
			origin:  "https://www.google.com",
			allowed: false,
		},
		{
			origin:  "https://www.leagueoflegends.com",
			allowed: false,
		},
		// Similar-looking domains
		{
			origin: "https://rift-light.gg",

			allowed: false,
		},
		{
			origin:  "https://www.rift-light.gg",
			allowed: false,
		},
		{
			origin: "https://myriftlight.gg",

			allowed: false,
		},
		{
			origin:  "https://www.myriftlight.gg",
			allowed: false,
		},
		{
			origin:  "https://superriftlight-web.pages.dev",
			allowed: false,
		},
		{
			origin:  "https://something.otherriftlight-web.pages.dev",
			allowed: false,
		},
		// Weird cases
		{
			origin:  "",
			allowed: false,
		},
		{
			origin:  "riftlight",
			allowed: false,
		},
		{
			origin:  "light.gg",
			allowed: false,
		},
		{
			origin:  "rift.light.gg",
			allowed: false,
		},
		{
			origin:  "rift-light.gg",
			allowed: false,
		},
		{
			origin:  "pages.dev",
			allowed: false,
		},
		{
			origin:  "superriftlight-web.pages.dev",
			allowed: false,
		},
	}

	runCORSTest := func(t *testing.T, handler http.HandlerFunc, method string, c originRule, handlerStatusCode int, handlerBody []byte) {
		req := httptest.NewRequest(method, "https://api.riftlight.gg/v1/account/europe/name/tag", nil)
		req.Header.Set("Origin", c.origin)
		w := httptest.NewRecorder()

		handler(w, req)

		resp := w.Result()

		// The handler is allowed to run when the method is not OPTIONS
		if method != "OPTIONS" {
			require.Equal(t, handlerStatusCode, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, handlerBody, body)
		}

		// CORS
		if c.allowed {
			require.Equal(t, c.origin, resp.Header.Get("Access-Control-Allow-Origin"))
			require.Equal(t, "X-Correlation-Id", resp.Header.Get("Access-Control-Expose-Headers"))

			if method == "OPTIONS" {
				require.Equal(t, "GET", resp.Header.Get("Access-Control-Allow-Methods"))
				require.Equal(t, "Content-Type, X-User-Id", resp.Header.Get("Access-Control-Allow-Headers"))
				require.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))
			} else {
				require.Empty(t, resp.Header.Get("Access-Control-Allow-Methods"))
				require.Empty(t, resp.Header.Get("Access-Control-Allow-Headers"))
			}
		} else {
			require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			require.Empty(t, resp.Header.Get("Access-Control-Expose-Headers"))
			require.Empty(t, resp.Header.Get("Access-Control-Allow-Methods"))
			require.Empty(t, resp.Header.Get("Access-Control-Allow-Headers"))
		}
	}

	t.Run("BuildCORSMiddleware", func(t *testing.T) {
		middleware := ports.BuildCORSMiddleware(allowedOrigins)

		handler := middleware(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(200)
				w.Write([]byte("Hello, world!"))
			},
		)

		for _, c := range cases {
			t.Run(fmt.Sprintf("Origin:'%s'", c.origin), func(t *testing.T) {
				t.Parallel()
				for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
					t.Run(method, func(t *testing.T) {
						t.Parallel()

						runCORSTest(t, handler, method, c, 200, []byte("Hello, world!"))
					})
				}
			})
		}
	})

	t.Run("BuildCORSHandler", func(t *testing.T) {
		handler := ports.BuildCORSHandler(allowedOrigins)

		for _, c := range cases {
			t.Run(fmt.Sprintf("Origin:'%s'", c.origin), func(t *testing.T) {
				t.Parallel()
				for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
					t.Run(method, func(t *testing.T) {
						t.Parallel()

						runCORSTest(t, handler, method, c, 204, []byte{})
					})
				}
			})
		}
	})
}

func TestDomainSuffixes(t *testing.T) {
	t.Parallel()

	t.Run("invalid suffixes", func(t *testing.T) {
		t.Parallel()

		for _, suffix := range []string{"", ".riftlight.gg", "https://riftlight.gg", "riftlight.gg/", "riftlight.gg:443"} {
			_, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, suffix)
			require.Error(t, err, suffix)
		}
	})

	t.Run("localhost", func(t *testing.T) {
		t.Parallel()

		allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX)
		require.NoError(t, err)
		withLocalhost := allowedOrigins.WithLocalhost()

		for _, c := range []originRule{
			{origin: "http://localhost", allowed: true},
			{origin: "http://localhost:5173", allowed: true},
			{origin: "https://riftlight.gg", allowed: true},
			{origin: "https://localhost:5173", allowed: false},
			{origin: "http://localhost:", allowed: false},
			{origin: "http://localhost:99999", allowed: false},
			{origin: "http://localhost.evil.com", allowed: false},
			{origin: "http://localhost:5173.evil.com", allowed: false},
		} {
			require.Equal(t, c.allowed, withLocalhost.AnyMatch(c.origin), c.origin)
		}

		require.False(t, allowedOrigins.AnyMatch("http://localhost:5173"), "the original suffixes are unchanged")
	})
}
