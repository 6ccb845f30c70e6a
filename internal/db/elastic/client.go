// Package elastic implements db.Store on top of the official Elasticsearch v8 client.
package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for one Elasticsearch handle.
type Config struct {
	Addresses           []string
	Username            string
	Password            string
	MaxRetries          int
	Timeout             time.Duration
	ConnectionsPerNode  int
	InsecureSkipVerify  bool
	CompressRequestBody bool
	// Logger receives one entry per HTTP round trip. Optional.
	Logger elastictransport.Logger
}

// Store implements db.Store via go-elasticsearch.
type Store struct {
	client    *elasticsearch.Client
	transport *http.Transport
}

// NewStore creates an Elasticsearch store. No request is sent until the first call.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   cfg.ConnectionsPerNode,
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       90 * time.Second,
		//nolint:gosec // verification is opt-out per deployment (self-signed clusters)
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:           cfg.Addresses,
		Username:            cfg.Username,
		Password:            cfg.Password,
		MaxRetries:          cfg.MaxRetries,
		RetryOnStatus:       []int{http.StatusTooManyRequests, 502, 503, 504},
		CompressRequestBody: cfg.CompressRequestBody,
		Transport:           tr,
		Logger:              cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, transport: tr}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer drain(res)
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: &db.ResponseError{Status: res.StatusCode, Reason: res.Status()}}
	}
	return nil
}

type infoResponse struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

// Info returns the cluster name and version.
func (s *Store) Info(ctx context.Context) (db.ClusterInfo, error) {
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err != nil {
		return db.ClusterInfo{}, &db.Error{Op: db.OpInfo, Err: err}
	}

	var out infoResponse
	if err := readResponse(db.OpInfo, res, &out); err != nil {
		return db.ClusterInfo{}, err
	}
	return db.ClusterInfo{Name: out.ClusterName, Version: out.Version.Number}, nil
}

// Close releases pooled connections. The client itself holds no other resources.
func (s *Store) Close() {
	s.transport.CloseIdleConnections()
}

// readResponse closes the body, converts error statuses into *db.ResponseError and decodes
// a successful body into out (numbers kept as json.Number).
func readResponse(op string, res *esapi.Response, out any) error {
	defer drain(res)

	if res.IsError() {
		return &db.Error{Op: op, Err: decodeError(res)}
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

type errorDetail struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	CausedBy *struct {
		Reason string `json:"reason"`
	} `json:"caused_by"`
}

// decodeError extracts type and reason from an Elasticsearch error body.
func decodeError(res *esapi.Response) *db.ResponseError {
	re := &db.ResponseError{Status: res.StatusCode, Reason: res.Status()}

	body, err := io.ReadAll(res.Body)
	if err != nil || len(body) == 0 {
		return re
	}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		re.Reason = string(bytes.TrimSpace(body))
		return re
	}

	var detail errorDetail
	if err := json.Unmarshal(envelope.Error, &detail); err != nil {
		// "error" may be a bare string on some endpoints.
		var msg string
		if json.Unmarshal(envelope.Error, &msg) == nil {
			re.Reason = msg
		}
		return re
	}

	re.Type = detail.Type
	switch {
	case detail.Reason != "":
		re.Reason = detail.Reason
	case detail.CausedBy != nil && detail.CausedBy.Reason != "":
		re.Reason = detail.CausedBy.Reason
	}
	return re
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
