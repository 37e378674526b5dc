package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xportconnect/models"
	"xportconnect/utils"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:          "Nia Exports",
		Email:         "Nia@Example.com",
		Password:      "s3cret!",
		Role:          models.RoleExporter,
		CompanyName:   "Nia Exports Pvt",
		ContactNumber: "+91-98765-4321",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.identity.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "nia@example.com", res.User.Email)
	assert.Empty(t, res.User.Password)

	caller, err := f.identity.tokens.ParseJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, caller.ID)
	assert.Equal(t, models.RoleExporter, caller.Role)

	stored, err := f.repos.Users.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", stored.Password)

	login, err := f.identity.Login(ctx, "nia@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.Empty(t, login.User.Password)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.identity.Register(ctx, validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
		msg    string
	}{
		{"duplicate email", func(in *RegisterInput) {}, "user already exists"},
		{"admin role", func(in *RegisterInput) { in.Email = "a@example.com"; in.Role = models.RoleAdmin }, "role must be one of"},
		{"short password", func(in *RegisterInput) { in.Email = "b@example.com"; in.Password = "123" }, "password must be at least 6"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email must be a valid email"},
		{"exporter without company", func(in *RegisterInput) { in.Email = "c@example.com"; in.CompanyName = "" }, "companyName is required"},
		{"bad phone", func(in *RegisterInput) { in.Email = "d@example.com"; in.ContactNumber = "12ab" }, "contactNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)
			_, err := f.identity.Register(ctx, in)
			require.ErrorIs(t, err, utils.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRegister_BuyerNeedsNoCompany(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	in.Role = models.RoleBuyer
	in.CompanyName = ""
	_, err := f.identity.Register(context.Background(), in)
	assert.NoError(t, err)
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.identity.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, wrongPassword := f.identity.Login(ctx, "nia@example.com", "nope")
	_, unknownEmail := f.identity.Login(ctx, "ghost@example.com", "s3cret!")
	_, empty := f.identity.Login(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownEmail, empty} {
		require.ErrorIs(t, err, utils.ErrValidation)
		assert.Equal(t, "invalid email or password", err.Error())
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.identity.Profile(ctx, f.shipper)
	require.NoError(t, err)
	assert.Equal(t, "Sam Shipper", u.Name)

	name := "Samuel Shipper"
	addr := models.Address{City: "Lagos", Country: "NG"}
	u, err = f.identity.UpdateProfile(ctx, f.shipper, ProfileInput{Name: &name, Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "Samuel Shipper", u.Name)
	assert.Equal(t, "Lagos", u.Address.City)
	assert.Equal(t, "Sam Shipper Ltd", u.CompanyName)

	empty := ""
	_, err = f.identity.UpdateProfile(ctx, f.shipper, ProfileInput{CompanyName: &empty})
	assert.ErrorIs(t, err, utils.ErrValidation)

	short := "S"
	_, err = f.identity.UpdateProfile(ctx, f.shipper, ProfileInput{Name: &short})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestListShippers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.identity.ListShippers(ctx, f.exporter)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sam Shipper", got[0].Name)
	assert.Equal(t, "Sid Shipper", got[1].Name)

	_, err = f.identity.ListShippers(ctx, f.buyer)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = f.identity.ListShippers(ctx, f.shipper)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}
