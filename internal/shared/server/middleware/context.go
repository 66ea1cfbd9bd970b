package middleware

import "github.com/gin-gonic/gin"

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	isGuestKey   = "isGuest"
	guestIDKey   = "guestId"
)

// SetUser records an authenticated principal on the request context.
func SetUser(c *gin.Context, userID, email string) {
	c.Set(userIDKey, userID)
	if email != "" {
		c.Set(userEmailKey, email)
	}
	c.Set(isGuestKey, false)
}

// SetGuest records an admitted guest on the request context.
func SetGuest(c *gin.Context, guestID string) {
	c.Set(isGuestKey, true)
	c.Set(guestIDKey, guestID)
}

// UserIDFromContext fetches the user ID set by the admission layer.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the admission layer.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// GuestIDFromContext fetches the guest record ID of an admitted guest.
func GuestIDFromContext(c *gin.Context) string {
	return stringFromContext(c, guestIDKey)
}

// IsGuest reports whether the request was admitted on the guest path.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
