package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Claims identify a session. Roles are not embedded; they are resolved
// from the store on every request.
type Claims struct {
	UserID string `json:"user_id"`
	jwtlib.RegisteredClaims
}

// ObjectClaims authorize a single read of a private storage object.
type ObjectClaims struct {
	Bucket string `json:"bkt"`
	Path   string `json:"path"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignObject issues a short-lived token bound to bucket and path.
func (s *Service) SignObject(bucket, path string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(ttl)
	claims := ObjectClaims{
		Bucket: bucket,
		Path:   path,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(expires),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	return signed, expires, err
}

// VerifyObject checks that tokenStr grants access to bucket/path.
func (s *Service) VerifyObject(tokenStr, bucket, path string) error {
	claims := &ObjectClaims{}
	if err := s.parse(tokenStr, claims); err != nil {
		return err
	}
	if claims.Bucket != bucket || claims.Path != path {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) parse(tokenStr string, claims jwtlib.Claims) error {
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
