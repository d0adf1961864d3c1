package farms

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// createIdempotent is the associated token program's CreateIdempotent tag.
const createIdempotent = 1

// BuildCreateAssociatedTokenAccountIdempotentInstruction creates owner's
// associated token account for mint unless it already exists.
func BuildCreateAssociatedTokenAccountIdempotentInstruction(payer, owner, mint, tokenProgram solana.PublicKey) (solana.Instruction, error) {
	if err := requireKeys(named("payer", payer), named("owner", owner), named("mint", mint)); err != nil {
		return nil, err
	}
	tokenProgram = tokenProgramOrDefault(tokenProgram)
	ata, _, err := DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return &solana.GenericInstruction{
		ProgID: solana.SPLAssociatedTokenAccountProgramID,
		AccountValues: []*solana.AccountMeta{
			signer(payer, true),
			writable(ata),
			readonly(owner),
			readonly(mint),
			readonly(solana.SystemProgramID),
			readonly(tokenProgram),
		},
		DataBytes: []byte{createIdempotent},
	}, nil
}
