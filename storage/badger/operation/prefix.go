package operation

import "github.com/halcyonnet/halcyon-go/model/halcyon"

// Key prefixes. Values are stable; never reuse a code.
const (
	codeRoundStatus = 10
)

func makePrefix(code byte, genesis halcyon.Hash) []byte {
	key := make([]byte, 0, 1+halcyon.HashLen)
	key = append(key, code)
	key = append(key, genesis[:]...)
	return key
}
