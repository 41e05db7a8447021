package responseformat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		status      int
		contentType string
	}{
		{name: "json bad request", url: "/shear/total", status: http.StatusBadRequest, contentType: "application/json"},
		{name: "json server error", url: "/shear/total?format=json", status: http.StatusInternalServerError, contentType: "application/json"},
		{name: "msgpack bad request", url: "/shear/total?format=msgpack", status: http.StatusBadRequest, contentType: "application/x-msgpack"},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			rec := httptest.NewRecorder()

			if err := f.WriteError(rec, req, tt.status, "missing dz"); err != nil {
				t.Fatalf("WriteError: %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("status = %d, expected %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, expected %q", ct, tt.contentType)
			}

			var body ErrorResponse
			var err error
			if tt.contentType == "application/x-msgpack" {
				dec := msgpack.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
				dec.SetCustomStructTag("json")
				err = dec.Decode(&body)
			} else {
				err = json.Unmarshal(rec.Body.Bytes(), &body)
			}
			if err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Error != "missing dz" {
				t.Errorf("error = %q, expected %q", body.Error, "missing dz")
			}
		})
	}
}

func TestWriteResponseMsgPackUsesJSONTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz?format=msgpack", nil)
	rec := httptest.NewRecorder()

	data := struct {
		RequestID string `json:"request_id"`
	}{RequestID: "abc"}
	if err := NewFormatter().WriteResponse(rec, req, http.StatusOK, data); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}

	var decoded map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if decoded["request_id"] != "abc" {
		t.Errorf("decoded = %v, expected request_id=abc", decoded)
	}
}
