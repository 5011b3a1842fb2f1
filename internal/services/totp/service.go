package totp

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/mcoot/morpion/internal/dependencies/clock"
	"github.com/mcoot/morpion/internal/dependencies/random"
)

// SecretLength is the number of base32 characters in a secret (160 bits)
const SecretLength = 32

// RFC 6238 parameters shared by every authenticator app
const (
	period = 30
	skew   = 1
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config holds configuration for the TOTP verifier
type Config struct {
	// Issuer is shown by authenticator apps next to the account label
	Issuer string
	// QRSize is the width and height of the provisioning QR code in pixels
	QRSize int
}

// DefaultConfig returns default TOTP configuration
func DefaultConfig() Config {
	return Config{
		Issuer: "Morpion",
		QRSize: 200,
	}
}

// Verifier creates TOTP secrets, renders provisioning QR codes and checks codes
type Verifier struct {
	clock  clock.Clock
	random random.Random
	cfg    Config
}

// New creates a new Verifier
func New(clock clock.Clock, random random.Random, cfg Config) *Verifier {
	defaults := DefaultConfig()
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = defaults.QRSize
	}
	return &Verifier{
		clock:  clock,
		random: random,
		cfg:    cfg,
	}
}

// CreateSecret generates a new base32 secret
func (v *Verifier) CreateSecret() (string, error) {
	secret, err := v.random.String(SecretLength, random.Base32Alphabet)
	if err != nil {
		return "", fmt.Errorf("creating totp secret: %w", err)
	}
	return secret, nil
}

// ProvisioningArtifact renders the otpauth key for the account as a PNG QR
// code embedded in a data URI
func (v *Verifier) ProvisioningArtifact(accountLabel, secret string) (string, error) {
	raw, err := secretEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("decoding totp secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      v.cfg.Issuer,
		AccountName: accountLabel,
		Period:      period,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("building totp key: %w", err)
	}

	img, err := key.Image(v.cfg.QRSize, v.cfg.QRSize)
	if err != nil {
		return "", fmt.Errorf("rendering totp qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding totp qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// VerifyCode checks a 6-digit code against the secret at the current time,
// accepting one period of drift either way. Malformed codes never verify.
func (v *Verifier) VerifyCode(secret, code string) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, v.clock.Now(), validateOpts())
	if err != nil {
		return false
	}
	return ok
}

// CodeAt returns the code valid for the secret at the verifier's current time
func (v *Verifier) CodeAt(secret string) (string, error) {
	return totp.GenerateCodeCustom(secret, v.clock.Now(), validateOpts())
}

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
