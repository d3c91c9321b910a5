package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/memeboard/memeboard-backend/model"
	Logger "github.com/memeboard/memeboard-backend/utils/log"
)

const (
	// ActorHeader carries the authenticated user id resolved by the
	// identity collaborator in front of this service. Credential
	// verification never happens here.
	ActorHeader = "X-Actor-Id"

	actorContextKey = "actor"
)

// UserGetter resolves a user id to a user row.
type UserGetter interface {
	GetUser(id string) (*model.User, error)
}

// Actor resolves the acting user from the identity header and stores it
// in the request context. Absent or unknown ids run the request as the
// anonymous actor, each core operation decides what anonymous may do.
func Actor(users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ActorHeader)
		if id == "" {
			c.Next()
			return
		}
		user, err := users.GetUser(id)
		if err != nil {
			Logger.LogV2.Warnf("unknown actor id %s, continuing as anonymous", id)
			c.Next()
			return
		}
		c.Set(actorContextKey, user)
		c.Next()
	}
}

// ActorFromContext returns the acting user, nil for anonymous.
func ActorFromContext(c *gin.Context) *model.User {
	if v, ok := c.Get(actorContextKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
