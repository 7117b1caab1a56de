package services

import (
	"context"
	"errors"
	"log"

	"brainbytes-arena/realtime"

	"github.com/gofiber/fiber/v2"
)

// RealtimeService authorizes channel subscriptions. A subscription is allowed
// only when the caller is a participant of the channel's match; everything
// else — including channels for matches that do not exist — gets the same
// Forbidden, so channel names cannot be used to enumerate matches.
type RealtimeService struct {
	Store  MatchStore
	Secret []byte
}

func NewRealtimeService(store MatchStore, secret []byte) *RealtimeService {
	return &RealtimeService{Store: store, Secret: secret}
}

// AuthorizeChannel validates membership and returns a signed subscription
// token for the channel.
func (s *RealtimeService) AuthorizeChannel(ctx context.Context, userID, socketID, channel string) (string, error) {
	matchID, channelUser, ok := realtime.ParseChannel(channel)
	if !ok {
		return "", ErrForbidden
	}
	// The per-user variant is only for the user it names.
	if channelUser != "" && channelUser != userID {
		return "", ErrForbidden
	}

	match, err := s.Store.GetMatch(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", err
	}
	if !match.IsParticipant(userID) {
		return "", ErrForbidden
	}

	return realtime.SignChannelToken(s.Secret, userID, socketID, channel)
}

// --- Fiber handlers ---

// Authorize handles POST /realtime/auth
func (s *RealtimeService) Authorize(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		SocketID    string `json:"socket_id" form:"socket_id"`
		ChannelName string `json:"channel_name" form:"channel_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.SocketID == "" || req.ChannelName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "socket_id and channel_name are required"})
	}

	token, err := s.AuthorizeChannel(c.Context(), userID, req.SocketID, req.ChannelName)
	if errors.Is(err, ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	if err != nil {
		log.Printf("Channel auth error for user %s on %s: %v", userID, req.ChannelName, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"auth": token, "channel": req.ChannelName})
}
