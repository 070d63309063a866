package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"awsoramazon/backend/types"
)

const (
	AllowHeaders = "Content-Type,If-Match,If-None-Match,Idempotency-Key"
	AllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
)

// JSON encodes body into a proxy response. Extra headers are merged over Content-Type.
func JSON(status int, body interface{}, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to marshal response: %w", err)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    h,
		Body:       string(payload),
	}, nil
}

// Fail renders err as the standard error envelope.
func Fail(err *Error) events.APIGatewayProxyResponse {
	payload, _ := json.Marshal(envelope{Error: envelopeBody{Code: err.Kind, Message: err.Message}})
	return events.APIGatewayProxyResponse{
		StatusCode: err.Kind.Status(),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}

func NoContent() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNoContent,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// WithCORS echoes origin back when the request carried one.
func WithCORS(resp events.APIGatewayProxyResponse, origin string) events.APIGatewayProxyResponse {
	if origin == "" {
		return resp
	}
	h := make(map[string]string, len(resp.Headers)+3)
	for k, v := range resp.Headers {
		h[k] = v
	}
	h["Access-Control-Allow-Origin"] = origin
	h["Access-Control-Allow-Headers"] = AllowHeaders
	h["Access-Control-Allow-Methods"] = AllowMethods
	resp.Headers = h
	return resp
}

// Header looks a request header up without regard to case.
func Header(req events.APIGatewayProxyRequest, name string) string {
	if v, ok := req.Headers[name]; ok {
		return v
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// IntQuery reads an optional numeric query parameter. Empty or non-numeric
// values are absent.
func IntQuery(req events.APIGatewayProxyRequest, name string) *int {
	raw := strings.TrimSpace(req.QueryStringParameters[name])
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func Origin(req events.APIGatewayProxyRequest) string {
	return Header(req, "Origin")
}

func Stored(resp events.APIGatewayProxyResponse) types.StoredResponse {
	return types.StoredResponse{StatusCode: resp.StatusCode, Headers: resp.Headers, Body: resp.Body}
}

func FromStored(s types.StoredResponse) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: s.StatusCode, Headers: s.Headers, Body: s.Body}
}
