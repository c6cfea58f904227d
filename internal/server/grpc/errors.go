package grpc

import (
	"errors"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status errors. Internal failures are
// reported without detail.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func isInternal(err error) bool {
	return status.Code(toStatus(err)) == codes.Internal
}
