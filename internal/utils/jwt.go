package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // sentinel error for rejected tokens
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

    "github.com/iliyamo/admin-portal/internal/model"
)

// ErrInvalidToken is returned for any token that fails verification:
// malformed, expired, bad signature or unexpected algorithm.  Callers get
// no further detail; verification fails closed.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed HS256 JWT along with its expiry.  Access
// tokens are stateless: the server keeps no session table and reconstructs
// the claims from the token on every request.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the verified claim set carried by an access token.
type Claims struct {
    UserID     uint64
    Username   string
    Permission model.Permission
    Role       model.Role
    IssuedAt   time.Time
    ExpiresAt  time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// embeds the user id (sub), username, permission and role so that the
// authorization middleware can gate requests without a database lookup.
func NewAccessToken(secret string, u model.User, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":        u.ID,
        "username":   u.Username,
        "permission": u.Permission.String(),
        "role":       string(u.Role),
        "iat":        now.Unix(),
        "exp":        exp.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw token string
// and returns its typed claims.  Any failure yields ErrInvalidToken.  Only
// HMAC signatures are accepted; a token signed with a different algorithm
// is rejected before the key is even consulted.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }

    // JWT numbers decode as float64; the sub claim is the numeric user id.
    sub, ok := mc["sub"].(float64)
    if !ok || sub < 1 {
        return Claims{}, ErrInvalidToken
    }
    username, _ := mc["username"].(string)
    permStr, _ := mc["permission"].(string)
    roleStr, _ := mc["role"].(string)

    perm, err := model.ParsePermission(permStr)
    if err != nil {
        return Claims{}, ErrInvalidToken
    }
    role, err := model.ParseRole(roleStr)
    if err != nil {
        return Claims{}, ErrInvalidToken
    }

    var iat, exp time.Time
    if v, ok := mc["iat"].(float64); ok {
        iat = time.Unix(int64(v), 0).UTC()
    }
    if v, ok := mc["exp"].(float64); ok {
        exp = time.Unix(int64(v), 0).UTC()
    }

    return Claims{
        UserID:     uint64(sub),
        Username:   username,
        Permission: perm,
        Role:       role,
        IssuedAt:   iat,
        ExpiresAt:  exp,
    }, nil
}
