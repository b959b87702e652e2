package storage

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignedURLTTL é a validade padrão de um link de leitura de anexo. O app
// pede um link novo a cada exibição, então 10 minutos bastam.
const SignedURLTTL = 10 * time.Minute

var ErrBadToken = errors.New("invalid or expired file token")

type fileClaims struct {
	jwt.RegisteredClaims
	Object string `json:"obj"`
}

// URLSigner emite e valida tokens HS256 que embutem o object path. O token
// vai na query string do endpoint público /files.
type URLSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

func NewURLSigner(secret []byte, baseURL string) *URLSigner {
	return &URLSigner{secret: secret, baseURL: baseURL, ttl: SignedURLTTL}
}

// SignedURL retorna a URL completa de leitura, válida por ttl.
func (s *URLSigner) SignedURL(objectPath string) (string, error) {
	p, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := fileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Object: p,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files?token=%s", s.baseURL, url.QueryEscape(tok)), nil
}

// Verify valida o token e retorna o object path embutido.
func (s *URLSigner) Verify(token string) (string, error) {
	var claims fileClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Object == "" {
		return "", ErrBadToken
	}
	return claims.Object, nil
}
