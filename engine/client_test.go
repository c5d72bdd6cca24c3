package engine

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClientFor(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return NewClient(&Config{
		Profile: "test",
		Scheme:  "http",
		Host:    u.Hostname(),
		Port:    port,
		Token:   "s3cret",
		Timeout: 5 * time.Second,
	})
}

func TestClient_Execute(t *testing.T) {
	t.Parallel()

	input, err := NewMatrixData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	want, err := NewMatrixData(1, 2, []float64{9, 9})
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/execute", r.URL.Path)
		require.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Z = in0 + in0\n", r.FormValue("script"))

		var outputs []string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("outputs")), &outputs))
		require.Equal(t, []string{"Z", "total"}, outputs)

		files := r.MultipartForm.File["in0"]
		require.Len(t, files, 1, "bound input in0 should travel as a payload part")
		payload, err := files[0].Open()
		require.NoError(t, err)
		defer payload.Close()
		bound, err := ReadValue(payload, files[0].Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, input, bound)

		mw := multipart.NewWriter(w)
		w.Header().Set("Content-Type", mw.FormDataContentType())

		ew, err := mw.CreateFormField("execution")
		require.NoError(t, err)
		_, err = ew.Write([]byte(`{"id":"exec-1","state":"completed","elapsed_ms":12}`))
		require.NoError(t, err)

		pw, err := mw.CreateFormField("problems")
		require.NoError(t, err)
		_, err = pw.Write([]byte(`[]`))
		require.NoError(t, err)

		zh := textproto.MIMEHeader{}
		zh.Set("Content-Disposition", `form-data; name="Z"; filename="Z"`)
		zh.Set("Content-Type", contentTypeArrow)
		zp, err := mw.CreatePart(zh)
		require.NoError(t, err)
		_, err = WriteValue(zp, want)
		require.NoError(t, err)

		sh := textproto.MIMEHeader{}
		sh.Set("Content-Disposition", `form-data; name="total"`)
		sh.Set("Content-Type", contentTypeJSON)
		sp, err := mw.CreatePart(sh)
		require.NoError(t, err)
		_, err = WriteValue(sp, IntScalar(18))
		require.NoError(t, err)

		require.NoError(t, mw.Close())
	}))
	defer ts.Close()

	client := testClientFor(t, ts)
	results, err := client.Execute(context.Background(),
		"Z = in0 + in0\n",
		map[string]Value{"in0": input},
		[]string{"Z", "total"})
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Equal(t, want, results["Z"])
	sv, ok := results["total"].(ScalarValue)
	require.True(t, ok)
	require.True(t, sv.Equal(IntScalar(18)))
}

func TestClient_Execute_FailedState(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := multipart.NewWriter(w)
		w.Header().Set("Content-Type", mw.FormDataContentType())

		ew, err := mw.CreateFormField("execution")
		require.NoError(t, err)
		_, err = ew.Write([]byte(`{"id":"exec-7","state":"failed"}`))
		require.NoError(t, err)

		pw, err := mw.CreateFormField("problems")
		require.NoError(t, err)
		_, err = pw.Write([]byte(`[{"code":"parse_error","severity":"error","message":"line 1: unknown builtin 'sherlok'"}]`))
		require.NoError(t, err)

		require.NoError(t, mw.Close())
	}))
	defer ts.Close()

	client := testClientFor(t, ts)
	_, err := client.Execute(context.Background(), "v0 = sherlok()\n", nil, []string{"v0"})

	var remote *RemoteExecutionError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "exec-7", remote.ExecutionID)
	require.Equal(t, "failed", remote.State)
	require.Len(t, remote.Problems, 1)
	// Diagnostics pass through verbatim.
	require.Equal(t, "line 1: unknown builtin 'sherlok'", remote.Problems[0].Message)
	require.ErrorContains(t, err, "unknown builtin 'sherlok'")
}

func TestClient_Execute_HTTPError(t *testing.T) {
	t.Parallel()

	t.Run("structured", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"execution":{"id":"exec-9","state":"rejected"},"problems":[{"code":"bad_output","severity":"error","message":"unknown output variable 'Q'"}]}`))
		}))
		defer ts.Close()

		_, err := testClientFor(t, ts).Execute(context.Background(), "v0 = 1\n", nil, []string{"Q"})

		var remote *RemoteExecutionError
		require.ErrorAs(t, err, &remote)
		require.Equal(t, "exec-9", remote.ExecutionID)
		require.Equal(t, "unknown output variable 'Q'", remote.Problems[0].Message)
	})

	t.Run("plain body", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "engine melted down", http.StatusInternalServerError)
		}))
		defer ts.Close()

		_, err := testClientFor(t, ts).Execute(context.Background(), "v0 = 1\n", nil, []string{"v0"})

		var remote *RemoteExecutionError
		require.ErrorAs(t, err, &remote)
		require.ErrorContains(t, err, "engine melted down")
	})
}

func TestClient_Execute_ConnectionError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing is listening anymore

	_, err := testClientFor(t, ts).Execute(context.Background(), "v0 = 1\n", nil, []string{"v0"})

	var conn *ConnectionError
	require.ErrorAs(t, err, &conn)
}
