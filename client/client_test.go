package client

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up a throwaway server and a gateway pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, func() string { return token })
}

func TestClientAttachesBearerToken(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "tok-123")

	require.NoError(t, c.GetJSON(context.Background(), "/api/ping", nil))
	assert.Equal(t, "Bearer tok-123", got)
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "")

	require.NoError(t, c.GetJSON(context.Background(), "/api/ping", nil))
	assert.Empty(t, got)
}

func TestClientErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message key", `{"message":"nope"}`, "nope"},
		{"error key", `{"error":"broken"}`, "broken"},
		{"pascal message", `{"Message":"upper"}`, "upper"},
		{"empty body", ``, "request failed"},
		{"non json", `<html>oops</html>`, "request failed"},
		{"message not a string", `{"message":42}`, "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tt.body))
			}, "")

			err := c.GetJSON(context.Background(), "/api/x", nil)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestSendRawBodyPassedVerbatim(t *testing.T) {
	var body []byte
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"status":"InProgress"}`))
	}, "t")

	var out map[string]string
	require.NoError(t, c.SendRaw(context.Background(), "PATCH", "/api/x", []byte(`"InProgress"`), &out))
	assert.Equal(t, `"InProgress"`, string(body))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "InProgress", out["status"])
}

func TestPostMultipartKeepsFileOrder(t *testing.T) {
	type seenPart struct {
		name        string
		contentType string
		data        string
	}
	var fields map[string]string
	var parts []seenPart

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		mr := multipart.NewReader(r.Body, params["boundary"])

		fields = map[string]string{}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(part)
			if part.FileName() == "" {
				fields[part.FormName()] = string(data)
				continue
			}
			parts = append(parts, seenPart{
				name:        part.FileName(),
				contentType: part.Header.Get("Content-Type"),
				data:        string(data),
			})
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}, "t")

	err := c.PostMultipart(context.Background(), "/api/submissions",
		map[string]string{"taskAssignmentId": "7", "notes": "n"},
		"files",
		[]Upload{
			{Name: "a.png", ContentType: "image/png", Data: []byte("AAA")},
			{Name: "b.bin", Data: []byte("BBB")},
		}, nil)
	require.NoError(t, err)

	assert.Equal(t, "7", fields["taskAssignmentId"])
	assert.Equal(t, "n", fields["notes"])
	require.Len(t, parts, 2)
	assert.Equal(t, "a.png", parts[0].name)
	assert.Equal(t, "image/png", parts[0].contentType)
	assert.Equal(t, "AAA", parts[0].data)
	assert.Equal(t, "b.bin", parts[1].name)
	assert.Equal(t, "BBB", parts[1].data)
}

func TestGetBinary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}, "t")

	data, contentType, err := c.GetBinary(context.Background(), "/api/submissions/files/1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	assert.Equal(t, "image/png", contentType)
}

func TestGetBinaryError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "file not found"})
	}, "t")

	_, _, err := c.GetBinary(context.Background(), "/api/submissions/files/999")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "file not found", apiErr.Message)
}
