package arena

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const roomIDLength = 6

// generateRoomID returns a fresh lowercase alphanumeric string of length 6
// from a uniformly random source (§4.1).
func generateRoomID() (string, error) {
	out := make([]byte, roomIDLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomIDAlphabet))))
		if err != nil {
			return "", errNostr(err)
		}
		out[i] = roomIDAlphabet[n.Int64()]
	}
	return string(out), nil
}

// generateSeed returns a uniform 64-bit unsigned integer (§4.1).
func generateSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, errNostr(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
