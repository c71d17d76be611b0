package service

import (
	"github.com/posthub/posthub/internal/config"
	"github.com/posthub/posthub/internal/media"
	"github.com/posthub/posthub/internal/repository"
)

type Services struct {
	Token   *TokenService
	Auth    *AuthService
	Post    *PostService
	Profile *ProfileService
}

func NewServices(repos *repository.Repositories, payloads media.Store, notifier EngagementNotifier, cfg *config.Config) *Services {
	tokens := NewTokenService(repos.User, repos.Revocation, cfg)

	return &Services{
		Token:   tokens,
		Auth:    NewAuthService(repos.User, tokens),
		Post:    NewPostService(repos.Post, payloads, notifier),
		Profile: NewProfileService(repos.User),
	}
}
