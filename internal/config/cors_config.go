package config

import (
	"sort"
	"strings"
)

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

func (s *Settings) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range s.Cors.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

// Only the token endpoint and the discovery documents are served.
func (s *Settings) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (s *Settings) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
