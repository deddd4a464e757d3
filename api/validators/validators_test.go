package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/angelmondragon/streamflix-backend/pkg/pagination"
)

type sampleBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func withParams(r *http.Request, kv map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for k, v := range kv {
		rc.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8", details["password"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"longenough","role":"admin"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type catalogBody struct {
	Name    string `json:"name" validate:"required,notblank"`
	Type    string `json:"type" validate:"required,titletype"`
	Quality string `json:"quality" validate:"required,quality"`
}

func TestDecodeJSONBodyCatalogTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Dark","type":"series","quality":"uhd"}`))
	var ok catalogBody
	require.NoError(t, DecodeJSONBody(req, &ok))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   ","type":"SHORT","quality":"4K"}`))
	var bad catalogBody
	typed := pkgerrors.As(DecodeJSONBody(req, &bad))
	require.NotNil(t, typed)
	details, isMap := typed.Details().(map[string]string)
	require.True(t, isMap)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be MOVIE or SERIES", details["type"])
	assert.Equal(t, "must be one of SD, HD, UHD", details["quality"])
}

func TestDecodeJSONBodyRejectsTrailingDocuments(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"longenough"}{"email":"x"}`))
	var body sampleBody
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	payload := `{"email":"a@b.co","password":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	var body sampleBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	require.NotNil(t, typed)
	assert.Equal(t, "request body too large", typed.Message())
}

func TestURLParams(t *testing.T) {
	req := withParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
		"titleId":       "12",
		"episodeNumber": "0",
		"bad":           "-3",
	})

	id, err := URLParamID(req, "titleId")
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)

	n, err := URLParamInt(req, "episodeNumber")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = URLParamID(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = URLParamInt(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=60", nil)
	_, err := ParseQueryInt(req, "limit", 10, 1, 50)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	v, err := ParseQueryInt(req, "limit", 10, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestParsePageParams(t *testing.T) {
	cursor := pagination.EncodeCursor(pagination.Cursor{ID: 7})
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&cursor="+cursor, nil)
	params, err := ParsePageParams(req)
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Limit: 5, Cursor: cursor}, params)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	params, err = ParsePageParams(req)
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)

	req = httptest.NewRequest(http.MethodGet, "/?cursor=not-a-cursor", nil)
	_, err = ParsePageParams(req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRequiredQuery(t *testing.T) {
	_, err := RequiredQuery(httptest.NewRequest(http.MethodGet, "/?token=", nil), "token")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	v, err := RequiredQuery(httptest.NewRequest(http.MethodGet, "/?token=abc", nil), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
