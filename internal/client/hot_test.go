package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wikid-app/feed/internal/client"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/api"
	"github.com/wikid-app/feed/pkg/errorx"
	"github.com/wikid-app/feed/pkg/testutil"
	"github.com/wikid-app/feed/pkg/xcontext"
)

func newCaller(t *testing.T, handler http.HandlerFunc) client.HotCaller {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	generator := api.NewGenerator(server.URL).WithHeader("X-Wikid-Header", "test")
	return client.NewHotCaller(generator, generator)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func Test_hotCaller_GetChannel(t *testing.T) {
	channel := testutil.Channel("100", 12,
		testutil.Message("1", testutil.Alice, "hi"),
		testutil.Message("2", testutil.Bob, "yo"),
	)

	testCases := []struct {
		name string
		body any
		err  error
	}{
		{name: "array", body: []model.Channel{channel}},
		{name: "wrapped", body: map[string]any{"channel": []model.Channel{channel}}},
		{name: "empty", body: []model.Channel{}, err: errorx.New(errorx.NotFound, "")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/communities/wikid/channels/general", r.URL.Path)
				require.Equal(t, "3", r.URL.Query().Get("page"))
				require.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
				require.Equal(t, "test", r.Header.Get("X-Wikid-Header"))
				writeJSON(t, w, tc.body)
			})

			resp, err := caller.GetChannel(testutil.MockContextWithViewerToken("jwt"),
				&model.GetChannelRequest{ChannelRef: testutil.ChannelRef, Page: 3})
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, model.ID("100"), resp.Channel.ID)
			require.Equal(t, 12, resp.Channel.RemainingMessages)
			require.Equal(t, []string{"hi", "yo"}, testutil.Texts(resp.Channel.Messages))
		})
	}
}

func Test_hotCaller_SelectChannel(t *testing.T) {
	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/communities/wikid/channels/select", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "general", body["channel_handle"])
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, caller.SelectChannel(testutil.MockContext(), testutil.ChannelRef))
}

func Test_hotCaller_CreateMessage(t *testing.T) {
	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/communities/wikid/messages/create", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "hello", r.FormValue("text"))
		require.Equal(t, "100", r.FormValue("channel_id"))
		require.Equal(t, "7", r.FormValue("parent_id"))
		require.Equal(t, "token-1", r.FormValue("optimistic_uuid"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		file.Close()
		require.Equal(t, "notes.txt", header.Filename)

		// The backend does not echo the token on this deployment.
		writeJSON(t, w, testutil.Message("8", testutil.Viewer, "hello"))
	})

	resp, err := caller.CreateMessage(testutil.MockContext(), &model.CreateMessageRequest{
		CommunityHandle: "wikid",
		ChannelID:       "100",
		Text:            "hello",
		ParentID:        "7",
		Files:           []model.LocalFile{{Name: "notes.txt", MimeType: "text/plain", Data: []byte("x")}},
		OptimisticUUID:  "token-1",
	})
	require.NoError(t, err)
	require.Equal(t, model.ID("8"), resp.Message.ID)
	require.Equal(t, "token-1", resp.Message.OptimisticUUID)
}

func Test_hotCaller_CreateMessage_MissingID(t *testing.T) {
	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"hello"}`))
	})

	_, err := caller.CreateMessage(testutil.MockContext(), &model.CreateMessageRequest{
		CommunityHandle: "wikid", ChannelID: "100", Text: "hello",
	})
	require.ErrorIs(t, err, errorx.New(errorx.BadResponse, ""))
}

func Test_hotCaller_EditMessage(t *testing.T) {
	edited := testutil.Message("5", testutil.Viewer, "fixed")
	edited.Edited = true

	testCases := []struct {
		name    string
		body    any
		message *model.Message
	}{
		{name: "full record", body: edited, message: &edited},
		{name: "partial record", body: map[string]any{"id": 5, "text": "fixed"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/communities/wikid/messages/edit", r.URL.Path)

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, "5", body["message_id"])
				require.Equal(t, "fixed", body["text"])
				writeJSON(t, w, tc.body)
			})

			resp, err := caller.EditMessage(testutil.MockContext(), "wikid",
				&model.EditMessageRequest{MessageID: "5", Text: "fixed"})
			require.NoError(t, err)
			if tc.message == nil {
				require.Nil(t, resp.Message)
				return
			}

			require.Equal(t, tc.message.Text, resp.Message.Text)
			require.True(t, resp.Message.Edited)
		})
	}
}

func Test_hotCaller_ReactMessage(t *testing.T) {
	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/communities/wikid/messages/react", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "👍", body["reaction"])
		w.Write([]byte(`{"updated":false}`))
	})

	resp, err := caller.ReactMessage(testutil.MockContext(), "wikid",
		&model.ReactMessageRequest{MessageID: "5", Reaction: "👍"})
	require.NoError(t, err)
	require.False(t, resp.Updated)
}

func Test_hotCaller_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	cfg := testutil.MockConfigs()
	cfg.HotAPI.Timeout = 50 * time.Millisecond
	ctx := testutil.MockContextWithConfigs(cfg)
	ctx = xcontext.WithHTTPClient(ctx, &http.Client{})

	err := caller.SelectChannel(ctx, testutil.ChannelRef)
	require.Error(t, err)
	require.True(t, errors.Is(err, errorx.New(errorx.Unavailable, "")))
}

func Test_hotCaller_ErrorEnvelope(t *testing.T) {
	caller := newCaller(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"message":"You cannot send messages here"}]}`))
	})

	_, err := caller.CreateMessage(testutil.MockContext(), &model.CreateMessageRequest{
		CommunityHandle: "wikid", ChannelID: "100", Text: "hello",
	})
	require.ErrorIs(t, err, errorx.New(errorx.Unauthenticated, ""))
	require.Equal(t, "You cannot send messages here", err.Error())
}

func Test_hotCaller_EscapesHandles(t *testing.T) {
	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(context.Context, ...api.Opt) (*api.Response, error) {
		return &api.Response{
			Code:    http.StatusOK,
			RawBody: []byte(`[{"id":"100","handle":"off topic"}]`),
		}, nil
	}

	caller := client.NewHotCaller(generator, generator)
	ref := model.ChannelRef{CommunityHandle: "wikid/dev", ChannelHandle: "off topic"}
	resp, err := caller.GetChannel(testutil.MockContext(), &model.GetChannelRequest{ChannelRef: ref, Page: 2})
	require.NoError(t, err)
	require.Equal(t, "off topic", resp.Channel.Handle)
	require.Equal(t, "/communities/wikid%2Fdev/channels/off%20topic", generator.LastPath)
	require.Equal(t, api.Parameter{"page": "2"}, generator.MockClient.LastQuery)
}
