/**
 * Copyright 2020 TryFix Engineering.
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gmbyapa@gmail.com)
 */

package multiserde

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GroupProperties carries the format constraints a group is created with.
// Multi format groups use FormatAny.
type GroupProperties struct {
	Format     string            `json:"serializationFormat"`
	Properties map[string]string `json:"properties"`
}

// FormatAny marks a group accepting schemas of every serialization format
const FormatAny = `Any`

// RegistryClient is the narrow contract this layer consumes from the remote
// schema registry. All operations are idempotent for a fixed input, which is
// what makes duplicate calls from racing cache misses safe.
type RegistryClient interface {
	CreateGroupIfAbsent(groupID string, properties GroupProperties) error
	RegisterCodec(groupID string, codecName string) error
	GetCodecs(groupID string) ([]string, error)
	RegisterSchemaIfAbsent(groupID string, schema SchemaInfo) (VersionInfo, error)
	ResolveEncodingId(groupID string, schema SchemaInfo, codecName string) (EncodingId, error)
	GetEncodingInfo(groupID string, id EncodingId) (EncodingInfo, error)
}

// Connection holds the endpoint configuration used to build the default HTTP
// registry client when the caller does not inject one.
type Connection struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

type httpRegistryClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRegistryClient returns a registry client talking to the registry's
// REST surface. Retry/backoff for transient failures lives here, inside the
// client, never in the dispatch layer above it.
func NewHTTPRegistryClient(conn Connection) RegistryClient {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	if conn.RetryMax > 0 {
		rc.RetryMax = conn.RetryMax
	}
	if conn.Timeout > 0 {
		rc.HTTPClient.Timeout = conn.Timeout
	}

	return &httpRegistryClient{
		baseURL: conn.BaseURL,
		client:  rc.StandardClient(),
	}
}

func (c *httpRegistryClient) CreateGroupIfAbsent(groupID string, properties GroupProperties) error {
	// 409 means the group already exists, which is the desired end state
	return c.call(http.MethodPut, fmt.Sprintf(`/groups/%s`, groupID), properties, nil, http.StatusConflict)
}

func (c *httpRegistryClient) RegisterCodec(groupID string, codecName string) error {
	body := struct {
		CodecType string `json:"codecType"`
	}{CodecType: codecName}

	return c.call(http.MethodPost, fmt.Sprintf(`/groups/%s/codecs`, groupID), body, nil, http.StatusConflict)
}

func (c *httpRegistryClient) GetCodecs(groupID string) ([]string, error) {
	var resp struct {
		CodecTypes []string `json:"codecTypes"`
	}
	if err := c.call(http.MethodGet, fmt.Sprintf(`/groups/%s/codecs`, groupID), nil, &resp); err != nil {
		return nil, err
	}

	return resp.CodecTypes, nil
}

func (c *httpRegistryClient) RegisterSchemaIfAbsent(groupID string, schema SchemaInfo) (VersionInfo, error) {
	var version VersionInfo
	err := c.call(http.MethodPost, fmt.Sprintf(`/groups/%s/schemas`, groupID), schema, &version)
	return version, err
}

func (c *httpRegistryClient) ResolveEncodingId(groupID string, schema SchemaInfo, codecName string) (EncodingId, error) {
	body := struct {
		Schema    SchemaInfo `json:"schemaInfo"`
		CodecType string     `json:"codecType"`
	}{Schema: schema, CodecType: codecName}

	var resp struct {
		EncodingId uint32 `json:"encodingId"`
	}
	if err := c.call(http.MethodPost, fmt.Sprintf(`/groups/%s/encodings`, groupID), body, &resp); err != nil {
		return 0, err
	}

	return EncodingId(resp.EncodingId), nil
}

func (c *httpRegistryClient) GetEncodingInfo(groupID string, id EncodingId) (EncodingInfo, error) {
	var info EncodingInfo
	err := c.call(http.MethodGet, fmt.Sprintf(`/groups/%s/encodings/%d`, groupID, id), nil, &info)
	return info, err
}

func (c *httpRegistryClient) call(method, path string, body, out interface{}, accepted ...int) error {
	op := fmt.Sprintf(`%s %s`, method, path)

	var reader io.Reader
	if body != nil {
		byt, err := json.Marshal(body)
		if err != nil {
			return &RegistryError{Op: op, Err: err}
		}
		reader = bytes.NewReader(byt)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return &RegistryError{Op: op, Err: err}
	}
	req.Header.Set(`Content-Type`, `application/json`)

	resp, err := c.client.Do(req)
	if err != nil {
		return &RegistryError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	byt, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RegistryError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		for _, code := range accepted {
			if resp.StatusCode == code {
				return nil
			}
		}
		return &RegistryError{Op: op, Err: fmt.Errorf(`registry responded [%d] %s`, resp.StatusCode, byt)}
	}

	if out != nil {
		if err := json.Unmarshal(byt, out); err != nil {
			return &RegistryError{Op: op, Err: err}
		}
	}

	return nil
}
