package auth

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrUserRejected is returned by a wallet when the user declines a request
var ErrUserRejected = errors.New("user rejected the request")

// WalletProvider is the account and signing capability of an external wallet
type WalletProvider interface {
	// RequestAccounts asks for access and returns the available addresses
	RequestAccounts(ctx context.Context) ([]string, error)
	// PersonalSign signs message with the account at address (EIP-191)
	PersonalSign(ctx context.Context, message, address string) (string, error)
}

// KeyWallet is a WalletProvider backed by a local secp256k1 key
type KeyWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewKeyWallet parses a hex private key, with or without 0x prefix
func NewKeyWallet(privateKeyHex string) (*KeyWallet, error) {
	// Remove 0x prefix if present
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &KeyWallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// LoadKeyWallet reads a hex private key from a file
func LoadKeyWallet(path string) (*KeyWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key file: %w", err)
	}
	return NewKeyWallet(string(data))
}

// Address returns the checksummed wallet address
func (w *KeyWallet) Address() string {
	return w.address.Hex()
}

func (w *KeyWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{w.address.Hex()}, nil
}

func (w *KeyWallet) PersonalSign(ctx context.Context, message, address string) (string, error) {
	if !common.IsHexAddress(address) || common.HexToAddress(address) != w.address {
		return "", fmt.Errorf("account %s is not managed by this wallet: %w", address, ErrUserRejected)
	}

	signature, err := crypto.Sign(personalHash(message), w.privateKey)
	if err != nil {
		return "", err
	}

	// Adjust v value for Ethereum compatibility (add 27)
	if signature[64] < 27 {
		signature[64] += 27
	}

	return hexutil.Encode(signature), nil
}

// RecoverAddress returns the address that produced an EIP-191 signature of message
func RecoverAddress(message, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(personalHash(message), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// SignedBy reports whether signatureHex over message was made by address
func SignedBy(message, signatureHex, address string) bool {
	recovered, err := RecoverAddress(message, signatureHex)
	if err != nil || !common.IsHexAddress(address) {
		return false
	}
	return common.HexToAddress(recovered) == common.HexToAddress(address)
}

func personalHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256Hash([]byte(prefixed)).Bytes()
}
