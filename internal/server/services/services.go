// Package services contains server-side business logic: login and token
// rotation, vault entry management, the security profile, and the
// disclosure gate that guards every secret reveal.
package services

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/logging"
)

// Answers are the three security profile answers in registration order.
type Answers [3]string

func (a Answers) complete() bool {
	return a[0] != "" && a[1] != "" && a[2] != ""
}

// internalError logs the cause and returns the opaque internal error.
func internalError(ctx context.Context, logger logging.Logger, msg string, err error) error {
	logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}
