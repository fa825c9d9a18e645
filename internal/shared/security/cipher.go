package security

import (
	"errors"

	"github.com/go-think/openssl"
)

// ws 客户端约定：key 与 iv 相同，零填充。
const WsPadding = openssl.ZEROS_PADDING

var ErrInvalidKeySize = errors.New("aes key must be 16, 24 or 32 bytes")

func checkKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		return nil
	}
	return ErrInvalidKeySize
}

func AesCBCEncrypt(src, key, iv []byte, padding string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return openssl.AesCBCEncrypt(src, key, iv, padding)
}

func AesCBCDecrypt(src, key, iv []byte, padding string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return openssl.AesCBCDecrypt(src, key, iv, padding)
}
