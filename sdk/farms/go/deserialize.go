package farms

import "fmt"

// DeserializeFarmState validates the discriminator and exact account size
// before decoding a FarmState.
func DeserializeFarmState(data []byte) (*FarmState, error) {
	if err := validateDiscriminator(data, DiscriminatorFarmState); err != nil {
		return nil, err
	}
	if err := validateSize(data, SizeFarmState); err != nil {
		return nil, err
	}
	var farm FarmState
	if err := farm.Deserialize(data[discriminatorSize:]); err != nil {
		return nil, fmt.Errorf("failed to deserialize farm state: %w", err)
	}
	return &farm, nil
}

// DeserializeUserState validates the discriminator and exact account size
// before decoding a UserState.
func DeserializeUserState(data []byte) (*UserState, error) {
	if err := validateDiscriminator(data, DiscriminatorUserState); err != nil {
		return nil, err
	}
	if err := validateSize(data, SizeUserState); err != nil {
		return nil, err
	}
	var user UserState
	if err := user.Deserialize(data[discriminatorSize:]); err != nil {
		return nil, fmt.Errorf("failed to deserialize user state: %w", err)
	}
	return &user, nil
}

func DeserializeGlobalConfig(data []byte) (*GlobalConfig, error) {
	if err := validateDiscriminator(data, DiscriminatorGlobalConfig); err != nil {
		return nil, err
	}
	if err := validateSize(data, SizeGlobalConfig); err != nil {
		return nil, err
	}
	var config GlobalConfig
	if err := config.Deserialize(data[discriminatorSize:]); err != nil {
		return nil, fmt.Errorf("failed to deserialize global config: %w", err)
	}
	return &config, nil
}

// DeserializeOraclePrices decodes an oracle price account. Trailing bytes
// beyond the known layout are ignored.
func DeserializeOraclePrices(data []byte) (*OraclePrices, error) {
	if err := validateDiscriminator(data, DiscriminatorOraclePrices); err != nil {
		return nil, err
	}
	if len(data) < SizeOraclePrices {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrInvalidAccountSize, len(data), SizeOraclePrices)
	}
	var prices OraclePrices
	if err := prices.Deserialize(data[discriminatorSize:SizeOraclePrices]); err != nil {
		return nil, fmt.Errorf("failed to deserialize oracle prices: %w", err)
	}
	return &prices, nil
}
