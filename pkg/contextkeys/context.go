package contextkeys

// Custom key type to avoid collisions with other packages.
type contextKey string

// DBContextKey is the key under which the request-scoped *gorm.DB
// (the pool, or an open transaction in tests) is stored.
const DBContextKey = contextKey("db")
