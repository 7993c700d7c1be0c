package domain

// TokenPair is what a successful login or refresh hands back. RefreshCipher is
// the deterministic ciphertext of RefreshToken, the form persisted on the
// Device so the live token can be matched without storing it in the clear.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	RefreshCipher string
}
