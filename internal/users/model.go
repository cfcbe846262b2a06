package users

// OTPCode is the only code VerifyOTP accepts. Nothing is ever sent.
const OTPCode = "1234"

// CountryPrefix is prepended to the mobile number on the OTP screen.
const CountryPrefix = "+91"

// AuthMismatchError is returned when the entered OTP is wrong.
type AuthMismatchError struct {
	Message string
}

func (e *AuthMismatchError) Error() string { return e.Message }

var ErrOTPMismatch = &AuthMismatchError{Message: "Invalid OTP. Please try " + OTPCode + "."}

// Contact is the emergency contact persisted under cabs_contact.
type Contact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// IsZero reports whether no contact has been captured.
func (c Contact) IsZero() bool { return c.Name == "" && c.Number == "" }

// State is the login/contact slice of the app state.
type State struct {
	// Mobile is the number the session belongs to.
	Mobile string `json:"mobile"`
	// PhoneInput mirrors the login field; it survives "back" from the OTP screen.
	PhoneInput        string  `json:"phone_input"`
	OTPRequestEnabled bool    `json:"otp_request_enabled"`
	DisplayMobile     string  `json:"display_mobile"`
	Contact           Contact `json:"contact"`
}
