package random

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"
)

const (
	// Chacha20SeedLen is the seed length of the Chacha based PRG, in bytes.
	Chacha20SeedLen = chacha20.KeySize
	// Chacha20CustomizerMaxLen is the maximum length of the nonce used as a stream customizer, in bytes.
	Chacha20CustomizerMaxLen = chacha20.NonceSize
)

// chachaCore implements randCore by reading the ChaCha20 key stream.
type chachaCore struct {
	cipher *chacha20.Cipher
}

// Read fills `buffer` with key stream bytes.
func (c *chachaCore) Read(buffer []byte) {
	for i := range buffer {
		buffer[i] = 0
	}
	c.cipher.XORKeyStream(buffer, buffer)
}

type chachaPRG struct {
	genericPRG
}

// NewChacha20 returns a new PRG based on the ChaCha20 stream cipher.
//
// The seed is used as the cipher key and must be Chacha20SeedLen bytes long.
// The customizer is used as the cipher nonce; it is zero padded and must not be longer than
// Chacha20CustomizerMaxLen. Different customizers with the same seed give independent streams.
func NewChacha20(seed []byte, customizer []byte) (*chachaPRG, error) {
	if len(seed) != Chacha20SeedLen {
		return nil, fmt.Errorf("chacha20 seed length should be %d, got %d", Chacha20SeedLen, len(seed))
	}
	if len(customizer) > Chacha20CustomizerMaxLen {
		return nil, fmt.Errorf("chacha20 customizer length should be less than %d, got %d",
			Chacha20CustomizerMaxLen, len(customizer))
	}
	nonce := make([]byte, Chacha20CustomizerMaxLen)
	copy(nonce, customizer)

	cipher, err := chacha20.NewUnauthenticatedCipher(seed, nonce)
	if err != nil {
		return nil, fmt.Errorf("could not create chacha20 cipher: %w", err)
	}
	prg := &chachaPRG{
		genericPRG: genericPRG{randCore: &chachaCore{cipher: cipher}},
	}
	return prg, nil
}

// TrialPRG returns the generator of trial number `trial` in a batch seeded with `seed`.
// The batch seed is expanded to a ChaCha20 key with SHA3-256 and the trial index is the
// stream customizer, so every trial owns an independent stream that only depends on (seed, trial).
func TrialPRG(seed uint64, trial uint64) (Rand, error) {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	key := sha3.Sum256(seedBytes[:])

	var customizer [8]byte
	binary.LittleEndian.PutUint64(customizer[:], trial)

	prg, err := NewChacha20(key[:], customizer[:])
	if err != nil {
		return nil, fmt.Errorf("could not create prg for trial %d: %w", trial, err)
	}
	return prg, nil
}
