// Package passwordreset drives the three-step OTP recovery flow:
// request a code for an email, verify the code, set the new password.
// The flow is a small state machine; each step is legal only in the
// state the previous step left behind, and a completed or cancelled
// flow returns to idle with no residue.
package passwordreset

import (
	"context"

	"go.uber.org/zap"

	"blogclient/application/ports"
	apperrors "blogclient/pkg/errors"
	"blogclient/pkg/validate"
)

// State identifies where the flow currently stands.
type State int

const (
	// StateIdle means no reset is in progress.
	StateIdle State = iota
	// StateOtpRequested means a code was mailed and awaits verification.
	StateOtpRequested
	// StateOtpVerified means the code checked out; the new password may
	// be submitted.
	StateOtpVerified
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOtpRequested:
		return "otp_requested"
	case StateOtpVerified:
		return "otp_verified"
	default:
		return "unknown"
	}
}

// Flow is the password-reset state machine. Not safe for concurrent
// use; a reset is a single-user interaction.
type Flow struct {
	api    ports.PasswordResetAPI
	logger *zap.Logger

	state State
	email string
	token string
}

// NewFlow creates an idle flow.
func NewFlow(api ports.PasswordResetAPI, logger *zap.Logger) *Flow {
	return &Flow{api: api, logger: logger, state: StateIdle}
}

// State returns the current position in the flow.
func (f *Flow) State() State {
	return f.state
}

// Email returns the address the flow was started for.
func (f *Flow) Email() string {
	return f.email
}

// RequestOTP starts a reset for the given email. Legal only from idle;
// an abandoned flow must be cancelled first.
func (f *Flow) RequestOTP(ctx context.Context, email string) error {
	if f.state != StateIdle {
		return apperrors.NewConflictError("a password reset is already in progress")
	}
	if err := validate.Struct(validate.EmailInput{Email: email}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	token, err := f.api.RequestOTP(ctx, email)
	if err != nil {
		return err
	}

	f.state = StateOtpRequested
	f.email = email
	f.token = token
	f.logger.Info("Password reset requested", zap.String("email", email))
	return nil
}

// ResendOTP asks for a fresh code for the same email. The server issues
// a new reset token, which replaces the held one; the previous code is
// dead after this call.
func (f *Flow) ResendOTP(ctx context.Context) error {
	if f.state != StateOtpRequested {
		return apperrors.NewConflictError("no pending code to resend")
	}

	token, err := f.api.RequestOTP(ctx, f.email)
	if err != nil {
		return err
	}

	f.token = token
	f.logger.Info("Password reset code resent", zap.String("email", f.email))
	return nil
}

// VerifyOTP checks the 6-digit code. On success the flow advances; on a
// server rejection it stays in place so the user can retype the code or
// resend.
func (f *Flow) VerifyOTP(ctx context.Context, code string) error {
	if f.state != StateOtpRequested {
		return apperrors.NewConflictError("no code was requested")
	}
	if err := validate.Struct(validate.OTPCode{Code: code}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if err := f.api.VerifyOTP(ctx, f.email, code, f.token); err != nil {
		return err
	}

	f.state = StateOtpVerified
	f.logger.Info("Password reset code verified", zap.String("email", f.email))
	return nil
}

// ResetPassword submits the new password and, on success, returns the
// flow to idle. The password rules are checked locally first so each
// failed rule surfaces its own message.
func (f *Flow) ResetPassword(ctx context.Context, password, confirm string) error {
	if f.state != StateOtpVerified {
		return apperrors.NewConflictError("the code has not been verified")
	}
	if err := validate.NewPassword(password, confirm); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if err := f.api.Reset(ctx, f.email, password, f.token); err != nil {
		return err
	}

	f.logger.Info("Password reset completed", zap.String("email", f.email))
	f.reset()
	return nil
}

// Cancel abandons the flow from any state. The held token is dropped.
func (f *Flow) Cancel() {
	if f.state != StateIdle {
		f.logger.Debug("Password reset cancelled", zap.Stringer("state", f.state))
	}
	f.reset()
}

func (f *Flow) reset() {
	f.state = StateIdle
	f.email = ""
	f.token = ""
}
