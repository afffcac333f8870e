package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rodologic/backend/internal/models"
)

// ErrInvalidToken rejects missing, unknown or revoked credentials.
var ErrInvalidToken = errors.New("credencial inválida ou revogada")

// Verifier resolves a bearer credential to the acting profile id. The
// import endpoint calls it before any document is processed.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// StoreVerifier checks bearer tokens against the api_tokens table.
// Token issuance belongs to the main application.
type StoreVerifier struct {
	db *gorm.DB
}

// NewStoreVerifier wraps an existing database handle.
func NewStoreVerifier(db *gorm.DB) *StoreVerifier {
	return &StoreVerifier{db: db}
}

// Verify returns the profile id behind a non-revoked token.
func (v *StoreVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var t models.APIToken
	err := v.db.WithContext(ctx).
		Where("token = ? AND revogado = false", token).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("consultar credencial: %w", err)
	}
	return t.ProfileID, nil
}
