package realtime

import (
	"context"
	"fmt"
	"strings"
)

// Event names delivered over per-match private channels.
const (
	EventMatchStart       = "match-start"
	EventMatchOver        = "match-over"
	EventOpponentProgress = "opponent-progress"
	EventSubmissionFailed = "submission-failed"
)

const matchChannelPrefix = "private-match-"

// MatchChannelPattern matches every per-match channel, including the
// per-user variants.
const MatchChannelPattern = matchChannelPrefix + "*"

// Broker pushes events to the clients subscribed to a channel. Delivery is
// best-effort and at-most-once: clients that connect after an event was
// published will not see it and must poll the match record instead.
type Broker interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// MatchChannel returns the private channel name for a match.
func MatchChannel(matchID string) string {
	return matchChannelPrefix + matchID
}

// UserChannel returns the per-user private channel of a match, used for
// events only one participant should see (e.g. their own failed submission).
func UserChannel(matchID, userID string) string {
	return fmt.Sprintf("%s%s-user-%s", matchChannelPrefix, matchID, userID)
}

// ParseChannel splits a private channel name into its match ID and, for the
// per-user form, the user ID. ok is false for malformed names.
func ParseChannel(channel string) (matchID, userID string, ok bool) {
	rest, found := strings.CutPrefix(channel, matchChannelPrefix)
	if !found || rest == "" {
		return "", "", false
	}
	if match, user, split := strings.Cut(rest, "-user-"); split {
		if match == "" || user == "" {
			return "", "", false
		}
		return match, user, true
	}
	return rest, "", true
}
