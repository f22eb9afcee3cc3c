package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"estate-api/internal/core/auth"
	"estate-api/internal/domain"
	"estate-api/pkg/utils"
)

type SignUpInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserService struct {
	users domain.UserStore
	jwt   *auth.JWTer
	log   *zap.Logger
}

func NewUserService(users domain.UserStore, jwt *auth.JWTer, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, jwt: jwt, log: l}
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (u *domain.User, err error) {
	defer func() { observe("user.signup", err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Invalid("username, email and password are required")
	}
	if _, perr := mail.ParseAddress(in.Email); perr != nil {
		return nil, domain.Invalid("email is not valid")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, domain.Invalid("password cannot be hashed")
	}
	u = &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       domain.DefaultAvatar,
	}
	if err = s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("id", u.ID))
	return u, nil
}

// SignIn checks the password and issues an access token for the user.
func (s *UserService) SignIn(ctx context.Context, email, password string) (u *domain.User, token string, err error) {
	defer func() { observe("user.signin", err) }()

	u, err = s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrUnauthorized
	}
	token, err = s.jwt.Issue(u.ID, domain.RoleUser)
	if err != nil {
		return nil, "", domain.Upstream("issue token", err)
	}
	return u, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}
