package repository

import (
	"context"
	"fmt"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/pkg/token"
)

type jwtResolver struct {
	issuer string
}

// NewJWTResolver create TokenIssuer on signed JWTs, no storage lookup
func NewJWTResolver(issuer string) TokenIssuer {
	return &jwtResolver{issuer: issuer}
}

func (j *jwtResolver) Resolve(_ context.Context, credential string) (int64, error) {
	claims, err := token.ParseJWT(credential)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return claims.UserID, nil
}

func (j *jwtResolver) Issue(_ context.Context, userID int64) (string, error) {
	return token.GenerateJWT(userID, string(token.RoleMember), j.issuer)
}
