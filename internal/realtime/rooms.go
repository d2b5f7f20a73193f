package realtime

import (
	"fmt"
	"strings"

	"household-finance-be/internal/entity"

	"github.com/google/uuid"
)

// RoomRef identifies a logical room. Existence is implicit in current
// membership; there is no durable room row.
type RoomRef struct {
	Kind    entity.RoomKind
	ScopeId uuid.UUID
}

func (r RoomRef) Key() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ScopeId)
}

// membersKey is the Redis set holding cluster-wide collaborator user ids for
// a room. Local session tables only see one instance; the set is the merged
// view.
func membersKey(roomKey string) string {
	return fmt.Sprintf("room:%s:members", roomKey)
}

// isCollabKey reports whether a room key belongs to a collaboration room,
// the kind that announces joins and leaves.
func isCollabKey(key string) bool {
	return strings.HasPrefix(key, string(entity.RoomKindDocument)+":") ||
		strings.HasPrefix(key, string(entity.RoomKindChat)+":")
}

func userRoom(userId uuid.UUID) RoomRef {
	return RoomRef{Kind: entity.RoomKindUser, ScopeId: userId}
}

func householdRoom(householdId uuid.UUID) RoomRef {
	return RoomRef{Kind: entity.RoomKindHousehold, ScopeId: householdId}
}

// subscriptionKey builds the room key for a data-subscription channel. The
// resource type is free-form (budget, invoice, ...) so this room kind is
// keyed by string, not uuid.
func subscriptionKey(resourceType string, resourceId uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", entity.RoomKindSubscription, resourceType, resourceId)
}
