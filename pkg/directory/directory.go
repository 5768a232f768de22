package directory

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reliefnet/disaster-api/pkg/apperrors"
	"github.com/reliefnet/disaster-api/pkg/auth"
	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/reliefnet/disaster-api/pkg/store"
	"go.uber.org/zap"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
	pinCodePattern = regexp.MustCompile(`^\d{5,6}$`)
	passwordDigit  = regexp.MustCompile(`\d`)
	passwordSymbol = regexp.MustCompile(`[!@#$%^&*]`)
)

// Directory manages the four account collections
type Directory struct {
	store  store.AccountStore
	tokens *auth.TokenManager
	logger *zap.Logger
}

// New creates a directory backed by s, issuing tokens through tokens
func New(s store.AccountStore, tokens *auth.TokenManager, logger *zap.Logger) *Directory {
	return &Directory{store: s, tokens: tokens, logger: logger}
}

// Register creates a user, volunteer or agency account.
// Admins cannot self-register.
func (d *Directory) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	role, ok := models.ParseRole(req.Role)
	if req.Role == "" {
		return nil, apperrors.Required("role")
	}
	if !ok || role == models.RoleAdmin {
		return nil, &apperrors.ValidationError{Field: "role", Message: "must be one of user, agency, volunteer"}
	}

	acct := &models.Account{
		ID:          uuid.NewString(),
		Role:        role,
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Address:     strings.TrimSpace(req.Address),
		Email:       normalizeEmail(req.Email),
		Country:     strings.TrimSpace(req.Country),
		City:        strings.TrimSpace(req.City),
		PinCode:     strings.TrimSpace(req.PinCode),
		CreatedAt:   time.Now().UTC(),
	}
	password := strings.TrimSpace(req.Password)

	required := []struct{ field, value string }{
		{"name", acct.Name},
		{"phoneNumber", acct.PhoneNumber},
		{"address", acct.Address},
		{"email", acct.Email},
		{"password", password},
		{"country", acct.Country},
		{"city", acct.City},
		{"pinCode", acct.PinCode},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperrors.Required(r.field)
		}
	}
	if err := validateContact(acct); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	acct.PasswordHash = hash

	if err := d.store.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}

	d.logger.Info("account registered", zap.String("account_id", acct.ID), zap.String("role", string(role)))
	return acct, nil
}

// Login checks credentials for role and returns the account with a fresh token.
// login may be the email address or the phone number.
func (d *Directory) Login(ctx context.Context, login, password, roleName string) (*models.Account, string, error) {
	switch {
	case strings.TrimSpace(login) == "":
		return nil, "", apperrors.Required("email")
	case strings.TrimSpace(password) == "":
		return nil, "", apperrors.Required("password")
	case roleName == "":
		return nil, "", apperrors.Required("role")
	}
	role, ok := models.ParseRole(roleName)
	if !ok {
		return nil, "", &apperrors.ValidationError{Field: "role", Message: "must be one of user, admin, agency, volunteer"}
	}

	acct, err := d.store.FindAccountByLogin(ctx, role, login)
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPasswordHash(strings.TrimSpace(password), acct.PasswordHash) {
		d.logger.Warn("login rejected", zap.String("role", string(role)))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := d.tokens.CreateToken(acct.ID, role)
	if err != nil {
		return nil, "", err
	}
	d.logger.Info("login", zap.String("account_id", acct.ID), zap.String("role", string(role)))
	return acct, token, nil
}

// Profile returns the account identified by a verified token
func (d *Directory) Profile(ctx context.Context, id string, role models.Role) (*models.Account, error) {
	return d.store.FindAccount(ctx, role, id)
}

// UpdateProfile applies the non-nil fields of upd. Passwords and roles are not
// editable here.
func (d *Directory) UpdateProfile(ctx context.Context, id string, role models.Role, upd models.ProfileUpdate) (*models.Account, error) {
	return d.store.UpdateAccount(ctx, role, id, func(a *models.Account) error {
		set := func(dst *string, src *string, field string) error {
			if src == nil {
				return nil
			}
			v := strings.TrimSpace(*src)
			if v == "" {
				return apperrors.Required(field)
			}
			*dst = v
			return nil
		}
		if err := set(&a.Name, upd.Name, "name"); err != nil {
			return err
		}
		if upd.Email != nil {
			e := normalizeEmail(*upd.Email)
			upd.Email = &e
		}
		fields := []struct {
			dst   *string
			src   *string
			field string
		}{
			{&a.Email, upd.Email, "email"},
			{&a.PhoneNumber, upd.PhoneNumber, "phoneNumber"},
			{&a.Address, upd.Address, "address"},
			{&a.Country, upd.Country, "country"},
			{&a.City, upd.City, "city"},
			{&a.PinCode, upd.PinCode, "pinCode"},
		}
		for _, f := range fields {
			if err := set(f.dst, f.src, f.field); err != nil {
				return err
			}
		}
		return validateContact(a)
	})
}

// ListAccounts returns every account holding role
func (d *Directory) ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error) {
	return d.store.ListAccounts(ctx, role)
}

func validateContact(a *models.Account) error {
	if !emailPattern.MatchString(a.Email) {
		return &apperrors.ValidationError{Field: "email", Message: "invalid email format"}
	}
	if a.PhoneNumber != "" && !phonePattern.MatchString(a.PhoneNumber) {
		return &apperrors.ValidationError{Field: "phoneNumber", Message: "invalid phone number format, use 123-456-7890"}
	}
	if a.PinCode != "" && !pinCodePattern.MatchString(a.PinCode) {
		return &apperrors.ValidationError{Field: "pinCode", Message: "must be a 5 or 6 digit number"}
	}
	return nil
}

func validatePassword(p string) error {
	if len(p) < 8 || !passwordDigit.MatchString(p) || !passwordSymbol.MatchString(p) {
		return &apperrors.ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters long and include at least 1 number and 1 special character",
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
