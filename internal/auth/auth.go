package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// PermissionUpload is the permission an actor must hold to push files
// through the relay.
const PermissionUpload = "files:upload"

const actorContextKey = "actor"

// Actor is the authenticated identity attached to a relay request.
type Actor struct {
	ID          string
	Permissions []string
}

func (a *Actor) Can(permission string) bool {
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

type Config struct {
	JWKSUrl      string
	Issuer       string
	Audience     string
	JWKSCacheTTL int // seconds
}

type cachedKeySet struct {
	set       jwk.Set
	expiresAt time.Time
}

// JWKSClient fetches and caches the signing key set. A stale cache is
// served when the refresh fails, so transient JWKS outages do not take the
// relay down.
type JWKSClient struct {
	url        string
	cacheTTL   time.Duration
	httpClient *http.Client

	mu    sync.RWMutex
	cache *cachedKeySet
}

func NewJWKSClient(url string, cacheTTLSeconds int) *JWKSClient {
	ttl := time.Duration(cacheTTLSeconds) * time.Second
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &JWKSClient{
		url:        url,
		cacheTTL:   ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *JWKSClient) KeySet(ctx context.Context) (jwk.Set, error) {
	c.mu.RLock()
	if c.cache != nil && time.Now().Before(c.cache.expiresAt) {
		set := c.cache.set
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil && time.Now().Before(c.cache.expiresAt) {
		return c.cache.set, nil
	}

	set, err := c.fetch(ctx)
	if err != nil {
		if c.cache != nil {
			return c.cache.set, nil
		}
		return nil, err
	}

	c.cache = &cachedKeySet{set: set, expiresAt: time.Now().Add(c.cacheTTL)}
	return set, nil
}

func (c *JWKSClient) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	set, err := jwk.ParseReader(resp.Body, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	return set, nil
}

// VerifyToken validates a bearer token against the key set and the expected
// issuer and audience, and extracts the actor it identifies.
func VerifyToken(ctx context.Context, tokenString string, jwksClient *JWKSClient, cfg Config) (*Actor, error) {
	kid, err := tokenKeyID(tokenString)
	if err != nil {
		return nil, err
	}

	keySet, err := jwksClient.KeySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	key, found := keySet.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key not found for kid: %s", kid)
	}

	var publicKey any
	if err := key.Raw(&publicKey); err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	verified, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithAudience(cfg.Audience))
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := verified.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	actor := &Actor{ID: sub}
	if permissions, ok := claims["permissions"].([]any); ok {
		for _, p := range permissions {
			if s, ok := p.(string); ok {
				actor.Permissions = append(actor.Permissions, s)
			}
		}
	}
	return actor, nil
}

func tokenKeyID(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}
	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("failed to decode token header: %w", err)
	}
	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "", fmt.Errorf("failed to parse token header: %w", err)
	}
	kid, ok := header["kid"].(string)
	if !ok {
		return "", fmt.Errorf("token missing kid in header")
	}
	return kid, nil
}

// Middleware authenticates the bearer token and stores the actor on the
// request context. Requests without a valid identity never reach the
// upload gate.
func Middleware(jwksClient *JWKSClient, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		actor, err := VerifyToken(c.Request.Context(), token, jwksClient, cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "details": err.Error()})
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// SetActor attaches an actor to the request context directly, for
// deployments (and tests) that authenticate outside Middleware.
func SetActor(c *gin.Context, actor *Actor) {
	c.Set(actorContextKey, actor)
}

// ActorFrom returns the authenticated actor stored by Middleware.
func ActorFrom(c *gin.Context) (*Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*Actor)
	return actor, ok
}
