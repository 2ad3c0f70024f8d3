package lightrag

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusRequestTimeout, KindTimeout},
		{http.StatusNotFound, KindBackendAPI},
		{http.StatusTooManyRequests, KindBackendAPI},
		{http.StatusInternalServerError, KindBackendAPI},
	}
	for _, tc := range cases {
		e := classifyStatus(tc.status, nil)
		if e.Kind != tc.kind {
			t.Errorf("status %d: expected %s, got %s", tc.status, tc.kind, e.Kind)
		}
		if e.StatusCode != tc.status {
			t.Errorf("status %d not preserved, got %d", tc.status, e.StatusCode)
		}
	}
}

func TestClassifyStatus_DetailMessage(t *testing.T) {
	e := classifyStatus(422, []byte(`{"detail":"query cannot be empty"}`))
	if e.Message != "HTTP 422: query cannot be empty" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if string(e.Payload) != `{"detail":"query cannot be empty"}` {
		t.Errorf("payload not preserved: %s", e.Payload)
	}
}

func TestClassifyStatus_NonJSONBody(t *testing.T) {
	e := classifyStatus(502, []byte("upstream gone\n"))
	if e.Message != "HTTP 502: upstream gone" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if e.Payload != nil {
		t.Errorf("non-JSON body should not become a payload: %s", e.Payload)
	}
}

func TestClassifyTransport(t *testing.T) {
	if e := classifyTransport(context.DeadlineExceeded, "http://x"); e.Kind != KindTimeout {
		t.Errorf("deadline exceeded should be timeout, got %s", e.Kind)
	}
	if e := classifyTransport(context.Canceled, "http://x"); e.Kind != KindConnection {
		t.Errorf("canceled should be connection, got %s", e.Kind)
	}
	if e := classifyTransport(errors.New("dial tcp: refused"), "http://x"); e.Kind != KindConnection {
		t.Errorf("refused dial should be connection, got %s", e.Kind)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NewError(KindValidation, "x"), http.StatusBadRequest},
		{NewMissingArguments("query_text", []string{"query"}), http.StatusBadRequest},
		{NewError(KindNameMismatch, "x"), http.StatusBadRequest},
		{NewError(KindUnknownNamespace, "x"), http.StatusNotFound},
		{NewError(KindUnknownOperation, "x"), http.StatusNotFound},
		{NewError(KindAuth, "x"), http.StatusUnauthorized},
		{&Error{Kind: KindAuth, StatusCode: 403}, http.StatusForbidden},
		{NewError(KindConnection, "x"), http.StatusBadGateway},
		{NewError(KindTimeout, "x"), http.StatusGatewayTimeout},
		{NewError(KindBackendAPI, "x"), http.StatusBadGateway},
		{&Error{Kind: KindBackendAPI, StatusCode: 429}, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s (status %d): expected %d, got %d", tc.err.Kind, tc.err.StatusCode, tc.want, got)
		}
	}
}

func TestAsError(t *testing.T) {
	orig := NewError(KindTimeout, "slow")
	if got := AsError(orig); got != orig {
		t.Error("AsError should return the original *Error")
	}

	foreign := errors.New("boom")
	e := AsError(foreign)
	if e.Kind != KindConnection {
		t.Errorf("foreign errors should wrap as connection_failure, got %s", e.Kind)
	}
	if e.Message != "boom" {
		t.Errorf("unexpected message %q", e.Message)
	}
}

func TestNewMissingArguments(t *testing.T) {
	e := NewMissingArguments("query_text", []string{"query"})
	if e.Kind != KindMissingArguments {
		t.Errorf("expected missing_arguments, got %s", e.Kind)
	}
	if len(e.Missing) != 1 || e.Missing[0] != "query" {
		t.Errorf("unexpected missing list %v", e.Missing)
	}
}
