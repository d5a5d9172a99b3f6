package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"animal-shelter-api/internal/domain/errs"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  *string `json:"name" validate:"required"`
	Age   *int    `json:"age" validate:"required,gte=0"`
	Ready *bool   `json:"ready" validate:"required"`
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"empty body", "", MsgMissingAttributes},
		{"missing field", `{"name":"Rex","age":1}`, MsgMissingAttributes},
		{"wrong type", `{"name":"Rex","age":"old","ready":true}`, "Invalid type for attribute age"},
		{"negative", `{"name":"Rex","age":-1,"ready":true}`, "Invalid value for attribute age"},
		{"broken json", `{"name":`, "Invalid JSON body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var v sample
			err := Decode(r, &v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidInput))
			assert.Equal(t, tc.msg, errs.Message(err))
		})
	}
}

func TestDecode_ZeroValuesAreValid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Rex","age":0,"ready":false}`))
	var v sample
	require.NoError(t, Decode(r, &v))
	assert.Equal(t, 0, *v.Age)
	assert.False(t, *v.Ready)
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		err  error
		want int
		msg  string
	}{
		{errs.Invalid("bad"), http.StatusBadRequest, "bad"},
		{errs.New(errs.ErrUnauthorized, "no jwt"), http.StatusUnauthorized, "no jwt"},
		{errs.Forbidden("not yours"), http.StatusForbidden, "not yours"},
		{errs.Conflict("taken"), http.StatusForbidden, "taken"},
		{errs.NotFound("gone"), http.StatusNotFound, "gone"},
		{errs.Store("get", errors.New("dial tcp: refused")), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteDomainError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body["Error"])
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	r.Get("/animals/{animalID}", func(_ http.ResponseWriter, r *http.Request) {
		got = PathID(r, "animalID")
	})

	for path, want := range map[string]int64{
		"/animals/42":  42,
		"/animals/abc": 0,
		"/animals/-3":  0,
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, got, path)
	}
}

func TestNegotiation(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireJSON(AcceptJSON(ok))

	cases := []struct {
		name        string
		method      string
		body        string
		contentType string
		accept      string
		want        int
	}{
		{"json body", http.MethodPost, `{}`, "application/json; charset=utf-8", "", http.StatusOK},
		{"form body", http.MethodPost, `a=1`, "application/x-www-form-urlencoded", "", http.StatusUnsupportedMediaType},
		{"delete ignores content type", http.MethodDelete, ``, "", "", http.StatusOK},
		{"accept any", http.MethodGet, ``, "", "*/*", http.StatusOK},
		{"accept list", http.MethodGet, ``, "", "text/html, application/json;q=0.9", http.StatusOK},
		{"accept html", http.MethodGet, ``, "", "text/html", http.StatusNotAcceptable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var r *http.Request
			if tc.body != "" {
				r = httptest.NewRequest(tc.method, "/", strings.NewReader(tc.body))
			} else {
				r = httptest.NewRequest(tc.method, "/", nil)
			}
			if tc.contentType != "" {
				r.Header.Set("Content-Type", tc.contentType)
			}
			if tc.accept != "" {
				r.Header.Set("Accept", tc.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPageLinks(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://api.test/animals?cursor=abc", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	l := PageLinks(r, "animals", "def")
	assert.Equal(t, "https://api.test/animals?cursor=abc", l.Previous)
	assert.Equal(t, "https://api.test/animals?cursor=def", l.Next)
	assert.Equal(t, "https://api.test/shelters/7", SelfLink(r, "shelters", 7))

	first := httptest.NewRequest(http.MethodGet, "http://api.test/animals", nil)
	assert.Equal(t, Links{}, PageLinks(first, "animals", ""))
}
