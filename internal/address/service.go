package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
)

// MaxPerUser caps how many addresses one buyer may save.
const MaxPerUser = 20

// CreateRequest is the body of POST /user-address.
type CreateRequest struct {
	Recipient string `json:"recipient" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"required,min=8,max=20"`
	Line1     string `json:"line1" validate:"required,max=255"`
	Ward      string `json:"ward,omitempty" validate:"max=120"`
	District  string `json:"district,omitempty" validate:"max=120"`
	City      string `json:"city" validate:"required,max=120"`
	Country   string `json:"country,omitempty" validate:"omitempty,len=2"`
	IsDefault bool   `json:"isDefault"`
}

// View is an address as returned to clients.
type View struct {
	ID        uuid.UUID `json:"id"`
	Recipient string    `json:"recipient"`
	Phone     string    `json:"phone"`
	Line1     string    `json:"line1"`
	Ward      string    `json:"ward,omitempty"`
	District  string    `json:"district,omitempty"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
	OneLine   string    `json:"oneLine"`
}

func newView(a models.Address) View {
	return View{
		ID:        a.ID,
		Recipient: a.Recipient,
		Phone:     a.Phone,
		Line1:     a.Line1,
		Ward:      a.Ward,
		District:  a.District,
		City:      a.City,
		Country:   a.Country,
		IsDefault: a.IsDefault,
		OneLine:   a.Snapshot().OneLine(),
	}
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	out := make([]View, 0, len(rows))
	for _, r := range rows {
		out = append(out, newView(r))
	}
	return out, nil
}

// Create saves a new address. The first address a buyer saves becomes the default.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	row := models.Address{
		UserID:    userID,
		Recipient: strings.TrimSpace(req.Recipient),
		Phone:     strings.TrimSpace(req.Phone),
		Line1:     strings.TrimSpace(req.Line1),
		Ward:      strings.TrimSpace(req.Ward),
		District:  strings.TrimSpace(req.District),
		City:      strings.TrimSpace(req.City),
		Country:   strings.ToUpper(strings.TrimSpace(req.Country)),
		IsDefault: req.IsDefault,
	}
	if row.Country == "" {
		row.Country = "VN"
	}
	if err := row.Snapshot().Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		n, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count addresses")
		}
		if n >= MaxPerUser {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("at most %d addresses can be saved", MaxPerUser))
		}
		if n == 0 {
			row.IsDefault = true
		}
		if row.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default address")
			}
		}
		if err := repo.Create(ctx, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := newView(row)
	return &view, nil
}
