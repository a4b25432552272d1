package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/identity"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrUsernameExists = shared.NewDomainError(shared.CodeAlreadyExists, "Username already exists")
	ErrEmailExists    = shared.NewDomainError(shared.CodeAlreadyExists, "Email already exists")
)

// UserService handles admin user management
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	jwt       *auth.JWTService
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	jwt *auth.JWTService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		jwt:       jwt,
		logger:    logger,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	department, err := shared.ParseDepartment(input.Department)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password, department)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	user.IsAdmin = input.IsAdmin

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("username", input.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("department", department.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// List lists users with filtering and pagination
func (s *UserService) List(ctx context.Context, input ListUsersInput) (shared.Paginated[UserInfo], error) {
	filter := identity.UserFilter{
		Filter: shared.Filter{
			Page:     input.Page,
			PageSize: input.PageSize,
			OrderBy:  input.OrderBy,
			OrderDir: input.OrderDir,
			Search:   input.Search,
		},
	}
	if input.Department != "" {
		d, err := shared.ParseDepartment(input.Department)
		if err != nil {
			return shared.Paginated[UserInfo]{}, err
		}
		filter.Department = &d
	}
	if input.Status != "" {
		status := identity.UserStatus(input.Status)
		filter.Status = &status
	}
	normalizePage(&filter.Filter)

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserInfo]{}, err
	}

	items := make([]UserInfo, len(users))
	for i, u := range users {
		items[i] = ToUserInfo(u)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Enable re-activates a disabled or locked user
func (s *UserService) Enable(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Enable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User enabled", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// Disable blocks the user and revokes every token they hold
func (s *UserService) Disable(ctx context.Context, actorID, id uuid.UUID) (*UserInfo, error) {
	if actorID == id {
		return nil, shared.NewDomainError("CANNOT_DISABLE_SELF", "You cannot disable your own account")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Disable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, id.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
			s.logger.Warn("Failed to revoke tokens of disabled user", zap.String("user_id", id.String()), zap.Error(err))
		}
	}

	s.logger.Info("User disabled", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizePage(f *shared.Filter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}
