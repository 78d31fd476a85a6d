package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/config"
	"github.com/veridian-estates/pipeline-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidScope = errors.New("token missing required scope")
)

const jwksRefreshInterval = 24 * time.Hour

// JWTValidator checks Azure AD bearer tokens against the tenant's signing
// keys. Keys come from the JWKS endpoint and are cached between refreshes.
type JWTValidator struct {
	config *config.AzureAdConfig

	mu         sync.RWMutex
	keys       map[string]*rsa.PublicKey
	lastUpdate time.Time
}

func NewJWTValidator(cfg *config.AzureAdConfig) *JWTValidator {
	return &JWTValidator{
		config: cfg,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// ValidateToken verifies the signature, audience, issuer and scopes of a
// token and maps its claims to a UserContext.
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	// An unverified parse gets us the kid so we can pick the signing key.
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing kid in header", ErrInvalidToken)
	}

	key, err := v.signingKey(kid)
	if err != nil {
		return nil, fmt.Errorf("resolve signing key: %w", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if err := v.checkClaims(claims); err != nil {
		return nil, err
	}

	return userContextFromClaims(claims), nil
}

func (v *JWTValidator) checkClaims(claims jwt.MapClaims) error {
	if v.config.ClientId != "" {
		aud, _ := claims.GetAudience()
		ok := false
		for _, a := range aud {
			if a == v.config.ClientId || strings.Contains(a, v.config.ClientId) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: invalid audience", ErrInvalidToken)
		}
	}

	iss, _ := claims.GetIssuer()
	if !strings.Contains(iss, v.config.TenantId) {
		return fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	if v.config.RequiredScopes != "" {
		if !hasRequiredScope(scopesFromClaims(claims), v.config.RequiredScopes) {
			return ErrInvalidScope
		}
	}
	return nil
}

func userContextFromClaims(claims jwt.MapClaims) *UserContext {
	userCtx := &UserContext{
		DisplayName: firstStringClaim(claims, "name", "unique_name", "preferred_username"),
		Email:       firstStringClaim(claims, "email", "upn", "unique_name"),
		Roles:       rolesFromClaims(claims),
	}

	if oid := firstStringClaim(claims, "oid", "sub"); oid != "" {
		if uid, err := uuid.Parse(oid); err == nil {
			userCtx.UserID = uid
		}
	}
	// Tokens without an object id still need a stable identity.
	if userCtx.UserID == uuid.Nil && userCtx.Email != "" {
		userCtx.UserID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(userCtx.Email))
	}

	return userCtx
}

func (v *JWTValidator) signingKey(kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, exists := v.keys[kid]
	fresh := time.Since(v.lastUpdate) < jwksRefreshInterval
	v.mu.RUnlock()
	if exists && fresh {
		return key, nil
	}

	if err := v.refreshKeys(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	key, exists = v.keys[kid]
	if !exists {
		return nil, fmt.Errorf("no signing key for kid %s", kid)
	}
	return key, nil
}

func (v *JWTValidator) refreshKeys() error {
	jwksURL := fmt.Sprintf("%s%s/discovery/v2.0/keys", v.config.InstanceUrl, v.config.TenantId)

	resp, err := http.Get(jwksURL)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
			Kty string `json:"kty"`
			Use string `json:"use"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" || k.Use != "sig" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}

	v.mu.Lock()
	v.keys = keys
	v.lastUpdate = time.Now()
	v.mu.Unlock()

	return nil
}

func firstStringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

func rolesFromClaims(claims jwt.MapClaims) []domain.UserRoleType {
	roles := []domain.UserRoleType{}
	for _, key := range []string{"roles", "role"} {
		switch val := claims[key].(type) {
		case []interface{}:
			for _, r := range val {
				if str, ok := r.(string); ok {
					roles = append(roles, domain.UserRoleType(str))
				}
			}
		case []string:
			for _, str := range val {
				roles = append(roles, domain.UserRoleType(str))
			}
		case string:
			roles = append(roles, domain.UserRoleType(val))
		}
	}
	return roles
}

func scopesFromClaims(claims jwt.MapClaims) []string {
	scopes := []string{}
	for _, key := range []string{"scp", "scope"} {
		if str, ok := claims[key].(string); ok {
			scopes = append(scopes, strings.Split(str, " ")...)
		}
	}
	return scopes
}

// hasRequiredScope accepts the token when it carries at least one of the
// comma-separated required scopes.
func hasRequiredScope(tokenScopes []string, required string) bool {
	required = strings.TrimSpace(required)
	if required == "" {
		return true
	}
	for _, req := range strings.Split(required, ",") {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		for _, scope := range tokenScopes {
			if strings.EqualFold(scope, req) {
				return true
			}
		}
	}
	return false
}
