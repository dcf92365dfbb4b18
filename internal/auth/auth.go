// internal/auth/auth.go
package auth

import (
    "errors"
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "golang.org/x/crypto/bcrypt"

    "github.com/unclebandit/sendmulticamp/internal/model"
    "github.com/unclebandit/sendmulticamp/internal/repository"
)

const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

type Claims struct {
    Email string `json:"email"`
    jwt.RegisteredClaims
}

// Service issues and verifies bearer tokens and owns the password flow.
type Service struct {
    Users  repository.UserRepositoryInterface
    Secret []byte
}

type Session struct {
    User  *model.User `json:"user"`
    Token string      `json:"token"`
}

func (s *Service) Register(email, password, fullName string) (*Session, error) {
    hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
    if err != nil {
        return nil, err
    }

    user := &model.User{Email: email, Password: string(hash), FullName: fullName}
    if err := s.Users.Create(user); err != nil {
        return nil, err
    }

    token, err := s.issueToken(user)
    if err != nil {
        return nil, err
    }
    return &Session{User: user, Token: token}, nil
}

func (s *Service) Login(email, password string) (*Session, error) {
    user, err := s.Users.GetByEmail(email)
    if err != nil {
        return nil, err
    }
    if user == nil {
        return nil, ErrInvalidCredentials
    }
    if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
        return nil, ErrInvalidCredentials
    }

    token, err := s.issueToken(user)
    if err != nil {
        return nil, err
    }
    return &Session{User: user, Token: token}, nil
}

func (s *Service) issueToken(user *model.User) (string, error) {
    now := time.Now()
    claims := Claims{
        Email: user.Email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   user.ID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
        },
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// VerifyToken parses a bearer token and returns its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
    claims := &Claims{}
    token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
        }
        return s.Secret, nil
    })
    if err != nil {
        return nil, err
    }
    if !token.Valid {
        return nil, errors.New("invalid token")
    }
    return claims, nil
}
