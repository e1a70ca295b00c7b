package cli

import (
	"context"
	"encoding/json"
	"fmt"
)

func (a *App) cleanup(ctx context.Context) error {

	n, err := a.accounts.CleanupExpiredSessions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Removed %d expired sessions\n", n)
	return nil
}

func (a *App) stats(ctx context.Context) error {

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(a.reporter.Report())
}
