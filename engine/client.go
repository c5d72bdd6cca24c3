package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/pkg/errors"
)

const userAgent = "gridml/" + Version

// Version of the client library.
const Version = "0.3.0"

const executePath = "/v1/execute"

// Client is the HTTP implementation of Executor. One execution is one POST
// of a multipart document: a "script" text part, an "outputs" JSON part
// naming the requested script variables, and one Arrow stream part per
// bound matrix or frame input. The response mirrors that shape with an
// "execution" status part, a "problems" diagnostics part and one payload
// part per requested output.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the given profile.
func NewClient(cfg *Config) *Client {
	return &Client{
		endpoint:   cfg.Endpoint(),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// executionStatus is the engine's JSON description of one execution.
type executionStatus struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

const stateCompleted = "completed"

// Execute implements Executor.
func (c *Client) Execute(ctx context.Context, script string, inputs map[string]Value, outputs []string) (map[string]Value, error) {
	body, contentType, err := encodeRequest(script, inputs, outputs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+executePath, body)
	if err != nil {
		return nil, errors.Wrap(err, "building execute request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "multipart/form-data")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.endpoint, Err: err}
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, readErrorResponse(rsp)
	}
	return readExecuteResponse(rsp)
}

func encodeRequest(script string, inputs map[string]Value, outputs []string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	sw, err := mw.CreateFormField("script")
	if err != nil {
		return nil, "", errors.Wrap(err, "creating script part")
	}
	if _, err := io.WriteString(sw, script); err != nil {
		return nil, "", errors.Wrap(err, "writing script part")
	}

	ow, err := mw.CreateFormField("outputs")
	if err != nil {
		return nil, "", errors.Wrap(err, "creating outputs part")
	}
	if err := json.NewEncoder(ow).Encode(outputs); err != nil {
		return nil, "", errors.Wrap(err, "writing outputs part")
	}

	for name, v := range inputs {
		var payload bytes.Buffer
		ctype, err := WriteValue(&payload, v)
		if err != nil {
			return nil, "", errors.Wrapf(err, "encoding bound input %s", name)
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, name))
		h.Set("Content-Type", ctype)
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating part for input %s", name)
		}
		if _, err := pw.Write(payload.Bytes()); err != nil {
			return nil, "", errors.Wrapf(err, "writing input %s", name)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "finalizing request body")
	}
	return &buf, mw.FormDataContentType(), nil
}

// readExecuteResponse walks the multipart response. The execution status and
// problems parts decide success; every other part is a requested output.
func readExecuteResponse(rsp *http.Response) (map[string]Value, error) {
	ctype, params, err := mime.ParseMediaType(rsp.Header.Get("Content-Type"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing response content type")
	}
	if ctype != "multipart/form-data" {
		return nil, errors.Errorf("unexpected response content type %q", ctype)
	}

	var status executionStatus
	var problems []Problem
	results := map[string]Value{}

	mr := multipart.NewReader(rsp.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading response part")
		}
		switch part.FormName() {
		case "execution":
			if err := json.NewDecoder(part).Decode(&status); err != nil {
				return nil, errors.Wrap(err, "decoding execution status")
			}
		case "problems":
			if err := json.NewDecoder(part).Decode(&problems); err != nil {
				return nil, errors.Wrap(err, "decoding problems")
			}
		default:
			partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
			if err != nil {
				return nil, errors.Wrapf(err, "output %s", part.FormName())
			}
			v, err := ReadValue(part, partType)
			if err != nil {
				return nil, errors.Wrapf(err, "decoding output %s", part.FormName())
			}
			results[part.FormName()] = v
		}
	}

	if status.State != stateCompleted {
		return nil, &RemoteExecutionError{ExecutionID: status.ID, State: status.State, Problems: problems}
	}
	return results, nil
}

// readErrorResponse turns a non-2xx response into a RemoteExecutionError,
// keeping the engine's body text verbatim when it is not structured.
func readErrorResponse(rsp *http.Response) error {
	data, _ := io.ReadAll(rsp.Body)

	var failure struct {
		Execution executionStatus `json:"execution"`
		Problems  []Problem       `json:"problems"`
	}
	if err := json.Unmarshal(data, &failure); err == nil && len(failure.Problems) > 0 {
		return &RemoteExecutionError{
			ExecutionID: failure.Execution.ID,
			State:       failure.Execution.State,
			Problems:    failure.Problems,
		}
	}
	return &RemoteExecutionError{
		State: rsp.Status,
		Problems: []Problem{{
			Code:     "http_error",
			Severity: "error",
			Message:  string(data),
		}},
	}
}
