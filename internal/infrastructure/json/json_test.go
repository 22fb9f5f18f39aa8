package json

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Code string `json:"code"`
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    payload
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"code":"AB12CD"}`, want: payload{Code: "AB12CD"}},
		{name: "empty", body: ``, wantErr: true, isEmpty: true},
		{name: "malformed", body: `{"code":`, wantErr: true},
		{name: "unknown field", body: `{"code":"x","extra":1}`, wantErr: true},
		{name: "two values", body: `{"code":"a"}{"code":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var got payload
			err := Read(req, &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.isEmpty, errors.Is(err, ErrEmptyBody))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotFoundError(rec, errors.New("room not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Not Found","message":"room not found"}`, rec.Body.String())
}

func TestWriteInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteInternalError(rec, errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestWriteRateLimitError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteRateLimitError(rec, 12)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "12", rec.Header().Get("Retry-After"))
}
