package grpc

import (
	"context"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/server/auth"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const callerKey ctxKey = "caller"

// methodRoles lists, per method, the roles of which the caller must hold
// at least one. Methods not listed are open to anonymous callers.
var methodRoles = map[string][]string{
	MethodDelete:      {common.RoleAdmin},
	MethodModify:      {common.RoleAdmin},
	MethodFindAll:     {common.RoleAdmin},
	MethodFind:        {common.RoleAdmin},
	MethodCount:       {common.RoleAdmin},
	MethodFindCurrent: {common.RoleUser, common.RoleAdmin},
}

// callerFromContext returns the caller stored by the access token
// interceptor; anonymous when none is set.
func callerFromContext(ctx context.Context) models.Caller {
	c, _ := ctx.Value(callerKey).(models.Caller)
	return c
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}

	var caller models.Caller
	if accessToken != "" {
		c, err := auth.ParseToken(accessToken, s.jwtSecret)
		if err != nil {
			s.logger.Debug(ctx, "rejected access token", "method", info.FullMethod, "error", err)
			return nil, toStatus(err)
		}
		caller = c
	}

	if required, ok := methodRoles[info.FullMethod]; ok {
		if caller.Login == "" {
			return nil, toStatus(common.ErrorUnauthorized)
		}
		if !hasAnyRole(caller, required) {
			return nil, toStatus(common.ErrorForbidden)
		}
	}

	return handler(context.WithValue(ctx, callerKey, caller), req)
}

func hasAnyRole(c models.Caller, roles []string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}
