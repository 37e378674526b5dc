package controllers

import (
	"net/http"
	"time"

	"xportconnect/service"
	"xportconnect/utils"
)

// UserController handles registration, login and profile requests
type UserController struct {
	base
	identity *service.IdentityService
}

// NewUserController creates a new UserController
func NewUserController(identity *service.IdentityService, rs utils.Responder, timeout time.Duration) *UserController {
	return &UserController{base: base{rs: rs, timeout: timeout}, identity: identity}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decode(w, r, &in); err != nil {
		uc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := uc.withTimeout(r)
	defer cancel()
	res, err := uc.identity.Register(ctx, in)
	if err != nil {
		uc.rs.Error(w, r, err)
		return
	}
	uc.rs.JSON(w, http.StatusCreated, "user registered successfully", res)
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &credentials); err != nil {
		uc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := uc.withTimeout(r)
	defer cancel()
	res, err := uc.identity.Login(ctx, credentials.Email, credentials.Password)
	if err != nil {
		uc.rs.Error(w, r, err)
		return
	}
	uc.rs.JSON(w, http.StatusOK, "login successful", res)
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := uc.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := uc.withTimeout(r)
	defer cancel()
	user, err := uc.identity.Profile(ctx, caller)
	if err != nil {
		uc.rs.Error(w, r, err)
		return
	}
	uc.rs.JSON(w, http.StatusOK, "", user)
}

// UpdateProfile edits the authenticated user's profile
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := uc.caller(w, r)
	if !ok {
		return
	}
	var in service.ProfileInput
	if err := decode(w, r, &in); err != nil {
		uc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := uc.withTimeout(r)
	defer cancel()
	user, err := uc.identity.UpdateProfile(ctx, caller, in)
	if err != nil {
		uc.rs.Error(w, r, err)
		return
	}
	uc.rs.JSON(w, http.StatusOK, "profile updated", user)
}

// ListShippers returns the shipper directory
func (uc *UserController) ListShippers(w http.ResponseWriter, r *http.Request) {
	caller, ok := uc.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := uc.withTimeout(r)
	defer cancel()
	shippers, err := uc.identity.ListShippers(ctx, caller)
	if err != nil {
		uc.rs.Error(w, r, err)
		return
	}
	uc.rs.JSON(w, http.StatusOK, "", shippers)
}
