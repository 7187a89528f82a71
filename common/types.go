package common

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
)

// HashSize is the number of bytes in a Hash.
const HashSize = 32

// Hash is a 32-byte content digest. The same type identifies Merkle
// entries, committed contexts and blocks; they are value identities,
// any component may hold a copy.
type Hash [HashSize]byte

// HashFromBytes copies the input bytes into a Hash. The input must be
// exactly HashSize bytes long.
func HashFromBytes(bytes []byte) (Hash, error) {
	var hash Hash
	if len(bytes) != HashSize {
		return hash, fmt.Errorf("invalid hash length %d, expected %d", len(bytes), HashSize)
	}
	copy(hash[:], bytes)
	return hash, nil
}

// HashFromHex parses a 0x-prefixed hexadecimal string into a Hash.
func HashFromHex(str string) (Hash, error) {
	bytes, err := hexutil.Decode(str)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(bytes)
}

func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// Base58 renders the hash in base58, the compact form used in logs and
// operator-facing output.
func (h Hash) Base58() string {
	return base58.Encode(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
