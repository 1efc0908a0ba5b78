package snapshot

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// leafArguments matches the claim contract's leaf layout:
// abi.encode(uint256 fid, uint256 amount).
var leafArguments = abi.Arguments{
	{Type: mustType("uint256")},
	{Type: mustType("uint256")},
}

// EncodeLeaf abi-encodes a (fid, amount) pair into the 64-byte preimage the
// claim contract hashes on-chain.
func EncodeLeaf(fid uint64, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errors.New("leaf amount must be non-negative")
	}
	encoded, err := leafArguments.Pack(new(big.Int).SetUint64(fid), amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to abi-encode leaf")
	}
	return encoded, nil
}

// LeafHash returns keccak256 of the encoded leaf.
func LeafHash(fid uint64, amount *big.Int) ([]byte, error) {
	encoded, err := EncodeLeaf(fid, amount)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(encoded), nil
}
