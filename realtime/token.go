package realtime

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ChannelClaims bind an authorized subscription to one socket and one channel.
type ChannelClaims struct {
	UserID   string `json:"user_id"`
	SocketID string `json:"socket_id"`
	Channel  string `json:"channel"`
	jwt.RegisteredClaims
}

const channelTokenTTL = 2 * time.Minute

// SignChannelToken issues the signed authorization payload the channel auth
// endpoint hands back to approved subscribers.
func SignChannelToken(secret []byte, userID, socketID, channel string) (string, error) {
	now := time.Now()
	claims := ChannelClaims{
		UserID:   userID,
		SocketID: socketID,
		Channel:  channel,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(channelTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyChannelToken checks signature and expiry and returns the claims.
func VerifyChannelToken(secret []byte, tokenStr string) (*ChannelClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ChannelClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ChannelClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid channel token")
	}
	return claims, nil
}
