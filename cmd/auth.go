package main

import (
	"context"
	"fmt"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthCheck verifies the API key against the account endpoint before any
// real work depends on it.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	account, err := r.newAccount(cmd, config)
	if err != nil {
		return err
	}

	user, err := account.Me(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}

	r.logger.Info("credentials verified", "email", user.Email)
	r.writePlain("Authenticated as %s (plan %d)\n", user.Email, user.Plan)
	return nil
}
