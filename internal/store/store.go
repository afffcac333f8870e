package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rodologic/backend/internal/models"
)

// ErrDuplicateNumero marks an insert rejected by the CT-e number
// uniqueness constraint. With concurrent batches this is the final
// safety net: callers report it as a duplicate, not a hard failure.
var ErrDuplicateNumero = errors.New("CT-e já importado")

// Store wraps a GORM Postgres handle with the operations the import
// pipeline needs.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// New connects to Postgres. TranslateError is on so unique violations
// surface as gorm.ErrDuplicatedKey.
func New(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	return &Store{db: db, log: logger}, nil
}

// DB exposes the underlying handle for collaborators that only read
// (e.g. token verification).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates the tables this service owns when they do not exist.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.Vehicle{},
		&models.Client{},
		&models.CTe{},
		&models.APIToken{},
	)
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// CTeExists reports whether a CT-e with the given number was already
// imported.
func (s *Store) CTeExists(ctx context.Context, numero string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.CTe{}).
		Where("numero = ?", numero).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("consultar CT-e %s: %w", numero, err)
	}
	return count > 0, nil
}

// CreateCTe inserts the shipment row. A number collision (a concurrent
// batch won the race after the existence check) comes back as
// ErrDuplicateNumero.
func (s *Store) CreateCTe(ctx context.Context, c *models.CTe) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("inserir CT-e %s: %w", c.Numero, ErrDuplicateNumero)
	}
	if err != nil {
		return fmt.Errorf("inserir CT-e %s: %w", c.Numero, err)
	}
	return nil
}

// EnsureVehicle returns the vehicle keyed by placa, creating a minimal
// auto-provisioned row when absent. created reports whether this call
// inserted the row.
func (s *Store) EnsureVehicle(ctx context.Context, placa, uf, principal string) (string, bool, error) {
	var v models.Vehicle
	err := s.db.WithContext(ctx).Where("placa = ?", placa).First(&v).Error
	if err == nil {
		return v.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("consultar veículo %s: %w", placa, err)
	}

	v = models.Vehicle{
		ID:        uuid.NewString(),
		Placa:     placa,
		UF:        uf,
		Modelo:    "NAO INFORMADO",
		Ativo:     true,
		Origem:    models.VehicleOrigin,
		CreatedBy: principal,
	}
	err = s.db.WithContext(ctx).Create(&v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent batch; the row exists now.
		if ferr := s.db.WithContext(ctx).Where("placa = ?", placa).First(&v).Error; ferr != nil {
			return "", false, fmt.Errorf("consultar veículo %s: %w", placa, ferr)
		}
		return v.ID, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("criar veículo %s: %w", placa, err)
	}

	s.log.Debug("vehicle provisioned", slog.String("placa", placa))
	return v.ID, true, nil
}

// EnsureClient returns the client keyed by documento, creating a
// minimal row when absent. The parsed payer name fills both the legal
// and the trade name. created reports whether this call inserted the
// row.
func (s *Store) EnsureClient(ctx context.Context, documento, nome, principal string) (string, bool, error) {
	var c models.Client
	err := s.db.WithContext(ctx).Where("documento = ?", documento).First(&c).Error
	if err == nil {
		return c.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("consultar cliente %s: %w", documento, err)
	}

	c = models.Client{
		ID:           uuid.NewString(),
		Documento:    documento,
		RazaoSocial:  nome,
		NomeFantasia: nome,
		CreatedBy:    principal,
	}
	err = s.db.WithContext(ctx).Create(&c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if ferr := s.db.WithContext(ctx).Where("documento = ?", documento).First(&c).Error; ferr != nil {
			return "", false, fmt.Errorf("consultar cliente %s: %w", documento, ferr)
		}
		return c.ID, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("criar cliente %s: %w", documento, err)
	}

	s.log.Debug("client provisioned", slog.String("documento", documento))
	return c.ID, true, nil
}
