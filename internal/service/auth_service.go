package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/repository"
	"enib-internships/backend/pkg/cas"
	"enib-internships/backend/pkg/jwt"
)

// 会话角色
const (
	RoleAdmin   = "admin"
	RoleMentor  = "mentor"
	RoleStudent = "student"
)

var (
	ErrInvalidTicket        = errors.New("CAS 票据无效或已过期")
	ErrCASUnavailable       = errors.New("CAS 服务暂不可用")
	ErrAccountNotRegistered = errors.New("账号未登记为导师或学生")
)

// AuthService 认证业务接口
type AuthService interface {
	LoginURL() string
	LoginCAS(ctx context.Context, ticket string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	cas       TicketValidator
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	casClient TicketValidator,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		cas:       casClient,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) LoginURL() string {
	if s.cas == nil {
		return ""
	}
	return s.cas.LoginURL()
}

func (s *authService) LoginCAS(ctx context.Context, ticket string) (*dto.TokenResponse, error) {
	// 1. 向 CAS 校验票据
	principal, err := s.cas.Validate(ctx, ticket)
	if err != nil {
		if errors.Is(err, cas.ErrTicketInvalid) {
			return nil, ErrInvalidTicket
		}
		s.logger.Error("CAS 票据校验失败", zap.Error(err))
		return nil, ErrCASUnavailable
	}

	// 2. 解析角色
	user, err := s.resolve(ctx, principal)
	if err != nil {
		return nil, err
	}

	// 3. 签发会话 Token
	token, err := s.jwtMgr.GenerateAccessToken(principal.User, user.Role, user.ProfileID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录成功",
		zap.String("uid", principal.User),
		zap.String("role", user.Role),
	)

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        *user,
	}, nil
}

// resolve 角色判定顺序：管理员白名单 → 导师（admin 角色导师视为管理员）→ 学生
func (s *authService) resolve(ctx context.Context, p *cas.Principal) (*dto.SessionUser, error) {
	email := strings.ToLower(p.Email())
	user := &dto.SessionUser{Email: email}

	isAdmin := s.cfg != nil && slices.Contains(s.cfg.Auth.Admins, p.User)

	if email != "" {
		mentor, err := s.repo.Mentor.GetByEmail(ctx, email)
		switch {
		case err == nil:
			user.Role = RoleMentor
			if isAdmin || mentor.Role == "admin" {
				user.Role = RoleAdmin
			}
			user.ProfileID = mentor.MentorID
			user.Name = mentor.FullName()
			return user, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("按邮箱查询导师失败", zap.Error(err))
			return nil, err
		}
	}

	if isAdmin {
		user.Role = RoleAdmin
		user.Name = p.User
		return user, nil
	}

	if email != "" {
		student, err := s.repo.Student.GetByEmail(ctx, email)
		switch {
		case err == nil:
			user.Role = RoleStudent
			user.ProfileID = student.StudentID
			user.Name = strings.TrimSpace(student.FirstName + " " + strings.ToUpper(student.LastName))
			return user, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("按邮箱查询学生失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Warn("未登记账号尝试登录", zap.String("uid", p.User), zap.String("email", email))
	return nil, ErrAccountNotRegistered
}

// Logout 将当前 Token 的 jti 加入黑名单直至其自然过期
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" || s.blacklist == nil {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("注销会话失败", zap.String("uid", claims.UserID), zap.Error(err))
		return err
	}
	return nil
}
