package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"

	apperrors "dungeon-server/internal/platform/errors"
)

const (
	minPasswordLen  = 8
	maxDisplayName  = 40
	issuer          = "dungeon-server"
	uniqueViolation = "23505"
)

var (
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "invalid credentials")
	ErrEmailInUse         = apperrors.New(apperrors.CodeEmailInUse, "email already in use")
	ErrInvalidEmail       = apperrors.New(apperrors.CodeInvalidEmail, "email address is not valid")
	ErrWeakPassword       = apperrors.New(apperrors.CodeWeakPassword, "password must be at least 8 characters")
)

// LocalID owns every save when the server runs without an account database.
var LocalID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

type Service struct {
	db        *pgxpool.Pool
	jwtSecret []byte
	jwtTTL    time.Duration
	logger    zerolog.Logger
}

type Account struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

type AuthResult struct {
	Account Account `json:"account"`
	Token   string  `json:"token"`
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewService(db *pgxpool.Pool, jwtSecret string, jwtTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{db: db, jwtSecret: []byte(jwtSecret), jwtTTL: jwtTTL, logger: logger}
}

func (s *Service) Register(ctx context.Context, email, displayName, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return AuthResult{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return AuthResult{}, ErrWeakPassword
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}
	if len(displayName) > maxDisplayName {
		displayName = displayName[:maxDisplayName]
	}
	hash, err := hashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	acct := Account{ID: uuid.New(), Email: email, DisplayName: displayName}
	_, err = s.db.Exec(ctx, `
INSERT INTO accounts (id, email, display_name, password_hash)
VALUES ($1, $2, $3, $4)
`, acct.ID, acct.Email, acct.DisplayName, hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return AuthResult{}, ErrEmailInUse
		}
		return AuthResult{}, fmt.Errorf("insert account: %w", err)
	}
	s.logger.Info().Str("account_id", acct.ID.String()).Msg("account registered")
	return s.result(acct)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var (
		acct Account
		hash string
	)
	err := s.db.QueryRow(ctx, `SELECT id, email, display_name, password_hash FROM accounts WHERE email = $1`, email).
		Scan(&acct.ID, &acct.Email, &acct.DisplayName, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("query account: %w", err)
	}
	ok, err := verifyPassword(hash, password)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.result(acct)
}

func (s *Service) ParseToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredentials
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return id, nil
}

func (s *Service) result(acct Account) (AuthResult, error) {
	token, err := s.issueToken(acct)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Account: acct, Token: token}, nil
}

func (s *Service) issueToken(acct Account) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: acct.Email,
		Name:  acct.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   acct.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') || strings.ContainsAny(email, " \t") {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonKeyLen      = 32
)

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("invalid hash format")
	}
	var (
		memory, iterations uint32
		parallelism        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("parse hash params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
