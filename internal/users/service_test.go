package users

import (
	"context"
	"errors"
	"testing"

	"cabs-service/internal/storage"
	"cabs-service/internal/views"
)

type recordingNav struct{ screens []string }

func (n *recordingNav) NavigateTo(_ context.Context, name string) bool {
	n.screens = append(n.screens, name)
	return true
}

func (n *recordingNav) last() string {
	if len(n.screens) == 0 {
		return ""
	}
	return n.screens[len(n.screens)-1]
}

func newFlow() (*Flow, *State, *storage.Memory, *recordingNav) {
	st := &State{}
	kv := storage.NewMemory()
	nav := &recordingNav{}
	return NewFlow(st, storage.NewGateway(kv), nav, nil), st, kv, nav
}

func TestPhoneInputEnablesOTPOnlyAtTenCharacters(t *testing.T) {
	f, st, _, _ := newFlow()
	for _, in := range []string{"", "98765", "987654321", "98765432101"} {
		if f.SetPhoneInput(in) || st.OTPRequestEnabled {
			t.Fatalf("%q enabled OTP request", in)
		}
	}
	if !f.SetPhoneInput("9876543210") {
		t.Fatal("10 characters did not enable OTP request")
	}
}

func TestRequestOTPFormatsNumberAndNavigates(t *testing.T) {
	f, st, _, nav := newFlow()
	ctx := context.Background()

	var verr *views.ValidationError
	if err := f.RequestOTP(ctx); !errors.As(err, &verr) {
		t.Fatalf("RequestOTP without number: %v", err)
	}
	if len(nav.screens) != 0 {
		t.Fatal("navigated without a valid number")
	}

	f.SetPhoneInput("9876543210")
	if err := f.RequestOTP(ctx); err != nil {
		t.Fatal(err)
	}
	if st.Mobile != "9876543210" || st.DisplayMobile != "+91 9876543210" {
		t.Fatalf("state = %+v", st)
	}
	if nav.last() != "otp" {
		t.Fatalf("navigated to %q", nav.last())
	}
}

func TestVerifyOTPGate(t *testing.T) {
	ctx := context.Background()

	for _, code := range []string{"", "0000", "12345", " 1234"} {
		f, _, kv, nav := newFlow()
		f.SetPhoneInput("9876543210")
		_ = f.RequestOTP(ctx)

		err := f.VerifyOTP(ctx, code)
		if !errors.Is(err, ErrOTPMismatch) {
			t.Fatalf("code %q: err = %v", code, err)
		}
		if nav.last() != "otp" {
			t.Fatalf("code %q moved to %q", code, nav.last())
		}
		if _, ok, _ := kv.Get(ctx, storage.KeySession); ok {
			t.Fatalf("code %q persisted a session", code)
		}
	}

	f, _, kv, nav := newFlow()
	f.SetPhoneInput("9123456780")
	_ = f.RequestOTP(ctx)
	if err := f.VerifyOTP(ctx, "1234"); err != nil {
		t.Fatal(err)
	}
	if nav.last() != "emergency" {
		t.Fatalf("navigated to %q", nav.last())
	}
	if v, _, _ := kv.Get(ctx, storage.KeySession); v != "9123456780" {
		t.Fatalf("session = %q", v)
	}
}

func TestBackToLoginKeepsPhoneInput(t *testing.T) {
	f, st, _, nav := newFlow()
	ctx := context.Background()
	f.SetPhoneInput("9876543210")
	_ = f.RequestOTP(ctx)
	f.BackToLogin(ctx)

	if nav.last() != "login" {
		t.Fatalf("navigated to %q", nav.last())
	}
	if st.PhoneInput != "9876543210" || !st.OTPRequestEnabled {
		t.Fatalf("phone input lost: %+v", st)
	}
}

func TestSaveContact(t *testing.T) {
	ctx := context.Background()

	for _, in := range [][2]string{{"", ""}, {"Asha", ""}, {"", "999"}} {
		f, st, kv, nav := newFlow()
		var verr *views.ValidationError
		if err := f.SaveContact(ctx, in[0], in[1]); !errors.As(err, &verr) {
			t.Fatalf("%v: err = %v", in, err)
		}
		if kv.Len() != 0 || len(nav.screens) != 0 || !st.Contact.IsZero() {
			t.Fatalf("%v: invalid contact had side effects", in)
		}
	}

	f, st, _, nav := newFlow()
	if err := f.SaveContact(ctx, "Asha", "9999999999"); err != nil {
		t.Fatal(err)
	}
	if nav.last() != "dashboard" {
		t.Fatalf("navigated to %q", nav.last())
	}
	c, ok, err := f.LoadContact(ctx)
	if !ok || err != nil || c != (Contact{Name: "Asha", Number: "9999999999"}) {
		t.Fatalf("stored contact = %+v ok=%v err=%v", c, ok, err)
	}
	if st.Contact != c {
		t.Fatalf("in-memory contact = %+v", st.Contact)
	}
}

func TestLoadContactCorrupt(t *testing.T) {
	f, _, kv, _ := newFlow()
	ctx := context.Background()
	_ = kv.Set(ctx, storage.KeyContact, "not-json")

	_, ok, err := f.LoadContact(ctx)
	if !ok || !errors.Is(err, storage.ErrCorruptData) {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}
