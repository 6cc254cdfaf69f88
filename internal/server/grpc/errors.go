package grpc

import (
	"errors"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Messages are fixed
// per error so nothing about the underlying cause leaks to the caller.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, "invalid input")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrChallengeFailed):
		return status.Error(codes.Unauthenticated, "security challenge failed")
	case errors.Is(err, common.ErrProfileNotConfigured):
		return status.Error(codes.NotFound, "security profile not configured")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrAlreadyConfigured):
		return status.Error(codes.AlreadyExists, "security profile already configured")
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "too many attempts, try again later")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
