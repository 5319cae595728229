package location_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/location"
)

const fallback = "Main Warehouse"

func TestResolver_Resolve(t *testing.T) {
	type testCase struct {
		name   string
		status int
		body   string
		want   string
	}

	tests := []testCase{
		{
			name:   "FirstWarehouse",
			status: http.StatusOK,
			body:   `[{"id":"1","name":"Downtown","type":"retail"},{"id":"2","name":"North Depot","type":"warehouse"},{"id":"3","name":"South Depot","type":"warehouse"}]`,
			want:   "North Depot",
		},
		{
			name:   "NoWarehouse",
			status: http.StatusOK,
			body:   `[{"id":"1","name":"Downtown","type":"retail"}]`,
			want:   fallback,
		},
		{
			name:   "ServerError",
			status: http.StatusInternalServerError,
			want:   fallback,
		},
		{
			name:   "MalformedBody",
			status: http.StatusOK,
			body:   `{"stores":`,
			want:   fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")

				if r.URL.Path != "/stores" {
					w.WriteHeader(http.StatusNotFound)
					return
				}

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			r := location.NewResolver(location.Config{
				BaseURL:  ts.URL + "/",
				Token:    "secret",
				Fallback: fallback,
			}, zap.NewNop())

			assert.Equal(t, tt.want, r.Resolve(context.Background()))
			assert.Equal(t, "Token secret", gotAuth)
		})
	}
}

func TestResolver_NoCatalogConfigured(t *testing.T) {
	r := location.NewResolver(location.Config{Fallback: fallback}, zap.NewNop())

	assert.Equal(t, fallback, r.Resolve(context.Background()))
}

func TestResolver_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	r := location.NewResolver(location.Config{BaseURL: url, Fallback: fallback}, zap.NewNop())

	assert.Equal(t, fallback, r.Resolve(context.Background()))
}
