package farms

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

const discriminatorSize = 8

var (
	DiscriminatorFarmState    = accountDiscriminator("FarmState")
	DiscriminatorUserState    = accountDiscriminator("UserState")
	DiscriminatorGlobalConfig = accountDiscriminator("GlobalConfig")
	DiscriminatorOraclePrices = accountDiscriminator("OraclePrices")

	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
	ErrInvalidAccountSize   = errors.New("invalid account size")
)

func sha256First8(s string) [8]byte {
	h := sha256.Sum256([]byte(s))
	var disc [8]byte
	copy(disc[:], h[:8])
	return disc
}

// accountDiscriminator is the Anchor account type tag.
func accountDiscriminator(name string) [8]byte {
	return sha256First8("account:" + name)
}

// instructionDiscriminator is the Anchor instruction tag for a snake_case
// instruction name.
func instructionDiscriminator(name string) [8]byte {
	return sha256First8("global:" + name)
}

func validateDiscriminator(data []byte, expected [8]byte) error {
	if len(data) < discriminatorSize {
		return fmt.Errorf("%w: data too short", ErrInvalidDiscriminator)
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != expected {
		return fmt.Errorf("%w: got %x, want %x", ErrInvalidDiscriminator, got, expected)
	}
	return nil
}

func validateSize(data []byte, want int) error {
	if len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccountSize, len(data), want)
	}
	return nil
}
