package contextkeys

type contextKey string

// DBContextKey - ключ, под которым *gorm.DB хранится в контексте
const DBContextKey = contextKey("db")

// Ключи, которые session middleware ставит в gin.Context
const (
	AdminIDKey   = "adminID"
	SessionIDKey = "sessionID"
)
