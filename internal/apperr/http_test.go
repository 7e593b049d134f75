package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   errorResponse
	}{
		{
			name:       "not found",
			err:        NotFound(CodeUnknownControl, "unknown toolbar control"),
			wantStatus: http.StatusNotFound,
			wantBody:   errorResponse{Error: CodeUnknownControl, Message: "unknown toolbar control"},
		},
		{
			name:       "validation carries field",
			err:        Validation("name", "name is required"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   errorResponse{Error: CodeValidation, Message: "name is required", Field: "name"},
		},
		{
			name:       "wrapped app error",
			err:        fmt.Errorf("select: %w", BadRequest(CodeBadRequest, "bad body")),
			wantStatus: http.StatusBadRequest,
			wantBody:   errorResponse{Error: CodeBadRequest, Message: "bad body"},
		},
		{
			name:       "plain error hides cause",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Error: CodeInternal, Message: "an unexpected error occurred"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got errorResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteErrorRateLimit(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(rec, TooManyRequests(CodeRateLimited, "slow down", 3*time.Second, "ip"))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want %q", got, "3")
	}
	if got := rec.Header().Get("X-RateLimit-Reason"); got != "ip" {
		t.Errorf("X-RateLimit-Reason = %q, want %q", got, "ip")
	}
}

func TestAsError(t *testing.T) {
	t.Parallel()

	rl := TooManyRequests(CodeRateLimited, "slow down", time.Second, "ip")

	tests := []struct {
		name string
		err  error
		want *Error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "plain", err: errors.New("boom"), want: nil},
		{name: "direct", err: rl, want: rl},
		{name: "wrapped", err: fmt.Errorf("intake: %w", rl), want: rl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := AsError(tt.err); got != tt.want {
				t.Errorf("AsError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("redis: connection refused")
	err := Internal(CodeUnavailable, "panel store unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if got, want := err.Error(), "panel store unavailable: redis: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
