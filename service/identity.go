package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"xportconnect/models"
	"xportconnect/repository"
	"xportconnect/utils"
)

// IdentityService registers and authenticates users and serves the shipper directory.
type IdentityService struct {
	users    repository.UserRepository
	tokens   *utils.TokenIssuer
	hashCost int
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(users repository.UserRepository, tokens *utils.TokenIssuer) *IdentityService {
	return &IdentityService{users: users, tokens: tokens, hashCost: bcrypt.DefaultCost}
}

// RegisterInput is the data a new account is created from.
type RegisterInput struct {
	Name           string                `json:"name" validate:"required,min=2,max=50"`
	Email          string                `json:"email" validate:"required,email"`
	Password       string                `json:"password" validate:"required,min=6"`
	Role           models.Role           `json:"role" validate:"required,oneof=exporter buyer shipper"`
	CompanyName    string                `json:"companyName"`
	CompanyDetails models.CompanyDetails `json:"companyDetails"`
	ContactNumber  string                `json:"contactNumber" validate:"omitempty,phone"`
	Address        models.Address        `json:"address"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and issues a token for it.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if (in.Role == models.RoleExporter || in.Role == models.RoleShipper) && in.CompanyName == "" {
		return nil, utils.NewError(utils.ErrValidation, "companyName is required for %s accounts", in.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Password:       string(hashed),
		Role:           in.Role,
		CompanyName:    in.CompanyName,
		CompanyDetails: in.CompanyDetails,
		ContactNumber:  in.ContactNumber,
		Address:        in.Address,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.NewError(utils.ErrValidation, "user already exists")
		}
		return nil, err
	}

	return s.issue(*user)
}

// Login checks credentials. Unknown email and wrong password are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := utils.NewError(utils.ErrValidation, "invalid email or password")
	if email == "" || password == "" {
		return nil, invalid
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return s.issue(*user)
}

func (s *IdentityService) issue(user models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &AuthResult{Token: token, User: user}, nil
}

// Profile returns the caller's account.
func (s *IdentityService) Profile(ctx context.Context, caller models.Caller) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ProfileInput holds the self-editable profile fields. Omitted fields are unchanged.
type ProfileInput struct {
	Name           *string                `json:"name" validate:"omitempty,min=2,max=50"`
	CompanyName    *string                `json:"companyName"`
	CompanyDetails *models.CompanyDetails `json:"companyDetails"`
	ContactNumber  *string                `json:"contactNumber" validate:"omitempty,phone"`
	Address        *models.Address        `json:"address"`
}

// UpdateProfile applies in to the caller's account.
func (s *IdentityService) UpdateProfile(ctx context.Context, caller models.Caller, in ProfileInput) (*models.User, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.CompanyName != nil && *in.CompanyName == "" && caller.Is(models.RoleExporter, models.RoleShipper) {
		return nil, utils.NewError(utils.ErrValidation, "companyName is required for %s accounts", caller.Role)
	}

	user, err := s.users.UpdateProfile(ctx, caller.ID, models.ProfileUpdate{
		Name:           in.Name,
		CompanyName:    in.CompanyName,
		CompanyDetails: in.CompanyDetails,
		ContactNumber:  in.ContactNumber,
		Address:        in.Address,
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ListShippers returns the public directory of shipper accounts. Exporters only.
func (s *IdentityService) ListShippers(ctx context.Context, caller models.Caller) ([]models.ShipperListing, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters can browse shippers")
	}
	shippers, err := s.users.ListByRole(ctx, models.RoleShipper)
	if err != nil {
		return nil, err
	}
	out := make([]models.ShipperListing, 0, len(shippers))
	for _, u := range shippers {
		out = append(out, u.ToShipperListing())
	}
	return out, nil
}
