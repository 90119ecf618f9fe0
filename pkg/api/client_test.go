package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wikid-app/feed/pkg/errorx"
)

func Test_defaultClient_GET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/communities/wikid/channels/general", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		require.Equal(t, "wikid", r.Header.Get("X-Wikid-Header"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Write([]byte(`[{"id":"1","remaining_messages":3}]`))
	}))
	defer server.Close()

	resp, err := NewGenerator(server.URL).WithHeader("X-Wikid-Header", "wikid").
		New("/communities/%s/channels/%s", "wikid", "general").
		Query(Parameter{"page": "2"}).
		GET(context.Background(), Bearer("jwt"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Code)

	array, ok := resp.Body.(Array)
	require.True(t, ok)
	require.Len(t, array, 1)

	var decoded []struct {
		ID        string `json:"id"`
		Remaining int    `json:"remaining_messages"`
	}
	require.NoError(t, resp.Decode(&decoded))
	require.Equal(t, 3, decoded[0].Remaining)
}

func Test_defaultClient_POST(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.Header.Get("Authorization"))

		switch {
		case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"message_id":"1","reaction":"👍"}`, string(b))
			w.Write([]byte(`{"updated":true}`))

		default:
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "hello", r.FormValue("text"))
			file, header, err := r.FormFile("files")
			require.NoError(t, err)
			defer file.Close()
			require.Equal(t, "a.txt", header.Filename)
			w.Write([]byte(`{"id":"9"}`))
		}
	}))
	defer server.Close()

	generator := NewGenerator(server.URL)

	resp, err := generator.New("/react").
		Body(JSON{"message_id": "1", "reaction": "👍"}).
		POST(context.Background(), Bearer(""))
	require.NoError(t, err)
	updated, err := resp.Body.(JSON).GetBool("updated")
	require.NoError(t, err)
	require.True(t, updated)

	form := NewMultipart().Field("text", "hello").
		File(MultipartFile{Field: "files", Name: "a.txt", ContentType: "text/plain", Data: []byte("data")})
	resp, err = generator.New("/create").Body(form).POST(context.Background())
	require.NoError(t, err)
	id, err := resp.Body.(JSON).GetString("id")
	require.NoError(t, err)
	require.Equal(t, "9", id)
}

func Test_defaultClient_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		code    errorx.Code
		message string
	}{
		{
			name:    "error envelope",
			status:  http.StatusBadRequest,
			body:    `{"errors":[{"message":"Text is too long"}]}`,
			code:    errorx.BadRequest,
			message: "Text is too long",
		},
		{
			name:    "envelope with ok status",
			status:  http.StatusOK,
			body:    `{"errors":[{"message":"Channel is archived"}]}`,
			code:    errorx.BadRequest,
			message: "Channel is archived",
		},
		{
			name:    "unauthenticated",
			status:  http.StatusUnauthorized,
			body:    `{}`,
			code:    errorx.Unauthenticated,
			message: UnexpectedErrorMessage,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    `{"errors":[{"message":"Not found"}]}`,
			code:    errorx.NotFound,
			message: "Not found",
		},
		{
			name:    "gateway error page",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			code:    errorx.Unavailable,
			message: UnexpectedErrorMessage,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>ok</html>`,
			code:    errorx.BadResponse,
			message: UnexpectedErrorMessage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewGenerator(server.URL).New("/").GET(context.Background())
			require.Error(t, err)
			require.Equal(t, tc.code, errorx.CodeOf(err))
			require.Equal(t, tc.message, err.Error())
		})
	}
}

func Test_defaultClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewGenerator(url).New("/").GET(context.Background())
	require.ErrorIs(t, err, errorx.New(errorx.Unavailable, ""))
	require.Equal(t, UnableToConnectMessage, err.Error())
}

func Test_Parameter_Encode(t *testing.T) {
	require.Equal(t, "a=1&b=hello%20world", Parameter{"b": "hello world", "a": "1"}.Encode())
}

func Test_JSON_Get(t *testing.T) {
	body := JSON{"a": map[string]any{"b": "c"}, "flag": true}

	value, err := body.GetString("a.b")
	require.NoError(t, err)
	require.Equal(t, "c", value)

	_, err = body.GetString("flag")
	require.Error(t, err)

	_, err = body.Get("missing")
	require.Error(t, err)
}
