package snapshot

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"
)

// BuildTree constructs a sorted-pair keccak256 Merkle tree over the encoded
// leaves. Sorted pairs let the claim contract verify a proof without knowing
// the leaf's index, so only (fid, amount, proof) crosses the wire.
func BuildTree(encodedLeaves [][]byte) (*merkletree.MerkleTree, error) {
	if len(encodedLeaves) == 0 {
		return nil, errors.New("cannot build a tree with no leaves")
	}
	tree, err := merkletree.NewTree(
		merkletree.WithData(encodedLeaves),
		merkletree.WithHashType(keccak256.New()),
		merkletree.WithSorted(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build merkle tree")
	}
	return tree, nil
}

// VerifySortedProof replays a sorted-pair proof the way the claim contract
// does: at each level the pair is hashed smaller-first, so no index is needed.
func VerifySortedProof(leafHash []byte, proof [][]byte, root []byte) bool {
	computed := leafHash
	for _, sibling := range proof {
		if bytes.Compare(computed, sibling) <= 0 {
			computed = crypto.Keccak256(computed, sibling)
		} else {
			computed = crypto.Keccak256(sibling, computed)
		}
	}
	return bytes.Equal(computed, root)
}
