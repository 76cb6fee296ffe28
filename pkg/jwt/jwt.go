package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distingue access de refresh; cada token solo es válido para su uso.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Errores del servicio de tokens. ErrExpiredToken implica firma válida.
var (
	ErrInvalidToken = errors.New("jwt: token inválido")
	ErrExpiredToken = errors.New("jwt: token expirado")
)

// Claims incluye los claims estándar JWT más el rol y el tipo de token.
// Subject es el email del usuario. Claims desconocidos se ignoran al parsear.
type Claims struct {
	jwt.RegisteredClaims
	Role string    `json:"role"`
	Type TokenType `json:"typ"`
}

// Config parámetros del servicio.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issued token firmado junto con su jti y expiración.
type Issued struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Service emite y valida tokens HS256. Es una función pura de (secret, claims, reloj).
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService construye el servicio. El secret no puede ser vacío.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("jwt: TTL debe ser positivo")
	}
	return &Service{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RefreshTTL duración de los refresh tokens.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken firma un token de vida corta para subject (email) y role.
func (s *Service) IssueAccessToken(subject, role string) (*Issued, error) {
	return s.issue(subject, role, AccessToken, s.accessTTL)
}

// IssueRefreshToken firma un token de vida larga para subject (email) y role.
func (s *Service) IssueRefreshToken(subject, role string) (*Issued, error) {
	return s.issue(subject, role, RefreshToken, s.refreshTTL)
}

func (s *Service) issue(subject, role string, typ TokenType, ttl time.Duration) (*Issued, error) {
	if subject == "" {
		return nil, fmt.Errorf("jwt: subject vacío")
	}
	now := s.now()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
		Type: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("jwt: firmar token: %w", err)
	}
	return &Issued{Token: signed, ID: id, ExpiresAt: exp}, nil
}

// Validate verifica firma, expiración, issuer y tipo. Devuelve ErrExpiredToken
// si solo falla la expiración y ErrInvalidToken en cualquier otro caso.
func (s *Service) Validate(tokenString string, typ TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	claims, err := s.parse(tokenString, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: se esperaba token %s", ErrInvalidToken, typ)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject vacío", ErrInvalidToken)
	}
	return claims, nil
}

// ExtractSubject verifica la firma pero no la expiración y devuelve el subject.
// El resultado solo sirve para cargar al usuario; la decisión de confianza la toma Validate.
func (s *Service) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject vacío", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *Service) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
