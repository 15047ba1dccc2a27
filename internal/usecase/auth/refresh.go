package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"app/internal/repository"
)

// トークンが無効・期限切れ・使用済み・失効済み
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// リフレッシュトークンを1回だけ使ってアクセストークンを再発行する。
// 使用済みトークンの再提示は盗難の兆候なので全トークンを破棄する。
type RefreshUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	clock Clock,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo: userRepo,
		rtRepo:   rtRepo,
		issuer:   issuer,
		clock:    clock,
	}
}

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

func (u *RefreshUsecase) Execute(ctx context.Context, plainRefreshToken string) (RefreshOutput, error) {
	var out RefreshOutput

	if plainRefreshToken == "" {
		return out, ErrInvalidRefreshToken
	}

	hash := sha256.Sum256([]byte(plainRefreshToken))
	tokenHash := hex.EncodeToString(hash[:])

	token, err := u.rtRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return out, ErrInvalidRefreshToken
		}
		return out, err
	}

	now := u.clock.Now()

	if token.RevokedAt != nil || now.After(token.ExpiresAt) {
		return out, ErrInvalidRefreshToken
	}

	// 再利用検知：同じユーザーのトークンを全部消す
	if token.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, token.UserID)
		return out, ErrInvalidRefreshToken
	}

	user, err := u.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, ErrInvalidRefreshToken
		}
		return out, err
	}
	if !user.IsActive {
		return out, ErrUserInactive
	}

	if err := u.rtRepo.MarkUsed(ctx, token.ID, now); err != nil {
		return out, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return out, err
	}

	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}
	return out, nil
}
