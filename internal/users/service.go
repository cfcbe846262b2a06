package users

import (
	"context"
	"log/slog"

	"cabs-service/internal/storage"
	"cabs-service/internal/views"
	"cabs-service/pkg/validation"
)

// Navigator moves the app between screens. *views.Router satisfies it.
type Navigator interface {
	NavigateTo(ctx context.Context, name string) bool
}

// Flow contains the login, OTP and emergency-contact logic.
type Flow struct {
	state *State
	store *storage.Gateway
	nav   Navigator
	log   *slog.Logger
}

// NewFlow wires the flow to the state slice it owns.
func NewFlow(state *State, store *storage.Gateway, nav Navigator, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{state: state, store: store, nav: nav, log: log.With("component", "users")}
}

// SetPhoneInput records the login field and reports whether an OTP may be
// requested for it.
func (f *Flow) SetPhoneInput(mobile string) bool {
	f.state.PhoneInput = mobile
	f.state.OTPRequestEnabled = validation.ValidateMobile(mobile)
	return f.state.OTPRequestEnabled
}

// RequestOTP moves to the OTP screen for the entered number. Delivery is a
// no-op; the code is always OTPCode.
func (f *Flow) RequestOTP(ctx context.Context) error {
	if !f.state.OTPRequestEnabled {
		return views.Invalid("Please enter a 10 digit mobile number")
	}
	f.state.Mobile = f.state.PhoneInput
	f.state.DisplayMobile = CountryPrefix + " " + f.state.Mobile
	f.nav.NavigateTo(ctx, string(views.OTP))
	f.log.Debug("otp sent", "mobile", f.state.Mobile, "hint", OTPCode)
	return nil
}

// VerifyOTP starts the session when code matches.
func (f *Flow) VerifyOTP(ctx context.Context, code string) error {
	if code != OTPCode {
		f.log.Info("otp mismatch", "mobile", f.state.Mobile)
		return ErrOTPMismatch
	}
	if err := f.store.SetString(ctx, storage.KeySession, f.state.Mobile); err != nil {
		return err
	}
	f.nav.NavigateTo(ctx, string(views.Emergency))
	f.log.Info("session started", "mobile", f.state.Mobile)
	return nil
}

// BackToLogin leaves the OTP screen. The phone field keeps its value.
func (f *Flow) BackToLogin(ctx context.Context) {
	f.nav.NavigateTo(ctx, string(views.Login))
}

// SaveContact persists the emergency contact and opens the dashboard.
func (f *Flow) SaveContact(ctx context.Context, name, number string) error {
	if !validation.Present(name, number) {
		return views.Invalid("Please fill in emergency contact details.")
	}
	c := Contact{Name: name, Number: number}
	if err := f.store.SetJSON(ctx, storage.KeyContact, c); err != nil {
		return err
	}
	f.state.Contact = c
	f.nav.NavigateTo(ctx, string(views.Dashboard))
	return nil
}

// LoadSession returns the persisted mobile number, if any.
func (f *Flow) LoadSession(ctx context.Context) (string, bool, error) {
	return f.store.GetString(ctx, storage.KeySession)
}

// LoadContact returns the persisted contact. A value that does not decode
// yields an error wrapping storage.ErrCorruptData.
func (f *Flow) LoadContact(ctx context.Context) (Contact, bool, error) {
	var c Contact
	ok, err := f.store.GetJSON(ctx, storage.KeyContact, &c)
	if err != nil {
		return Contact{}, ok, err
	}
	return c, ok, nil
}

// Restore puts a bootstrapped session back into memory.
func (f *Flow) Restore(mobile string, contact Contact) {
	f.state.Mobile = mobile
	f.state.Contact = contact
}
