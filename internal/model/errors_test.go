package model

import (
	"errors"
	"testing"
)

func TestAPIError_ImplementsError(t *testing.T) {
	var err error = &APIError{Code: ErrCodeInvalidInput, Message: "bad input"}

	if got, want := err.Error(), "[INVALID_INPUT] bad input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAPIError_ErrorsAs(t *testing.T) {
	var err error = NewRateLimitedError()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("errors.As failed to unwrap APIError")
	}
	if apiErr.Code != ErrCodeRateLimited {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrCodeRateLimited)
	}
}

func TestErrorConstructors_Messages(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		wantCode    string
		wantMessage string
	}{
		{"missing credential", NewMissingCredentialError(), ErrCodeMissingCredential, "Token is missing"},
		{"malformed credential", NewMalformedCredentialError(), ErrCodeMalformedCredential, "Token format invalid"},
		{"invalid credential", NewInvalidCredentialError("upstream detail"), ErrCodeInvalidCredential, "Token is invalid or expired"},
		{"invalid credentials", NewInvalidCredentialsError(), ErrCodeInvalidCredentials, "Invalid email or password"},
		{"signup failed", NewSignupFailedError(), ErrCodeSignupFailed, "Could not create user."},
		{"rate limited", NewRateLimitedError(), ErrCodeRateLimited, "Rate limit exceeded."},
		{"upstream unauthorized", NewUpstreamUnauthorizedError(), ErrCodeUpstreamUnauthorized, "Invalid API key."},
		{"payment required", NewPaymentRequiredError(), ErrCodePaymentRequired, "Payment required or credits issue."},
		{"history item not found", NewHistoryItemNotFoundError(), ErrCodeNotFound, "Item not found or you do not have permission to delete it"},
		{"service not configured", NewServiceNotConfiguredError(), ErrCodeServiceNotConfigured, "SUPABASE_SERVICE_ROLE_KEY is not configured"},
		{"upstream error", NewUpstreamError("boom"), ErrCodeUpstreamError, "Internal server error: boom"},
		{"internal error", NewInternalError("oops"), ErrCodeInternalError, "Internal server error: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMessage)
			}
		})
	}
}

func TestNewInvalidCredentialError_CarriesDetail(t *testing.T) {
	err := NewInvalidCredentialError("token expired at 2026-01-01")
	if err.Detail != "token expired at 2026-01-01" {
		t.Errorf("Detail = %q, want %q", err.Detail, "token expired at 2026-01-01")
	}
}

func TestNewSignupRejectedError_SurfacesProviderMessage(t *testing.T) {
	err := NewSignupRejectedError("User already registered")
	if err.Code != ErrCodeSignupRejected {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeSignupRejected)
	}
	if err.Message != "User already registered" {
		t.Errorf("Message = %q, want %q", err.Message, "User already registered")
	}
}
