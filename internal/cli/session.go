package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
)

// authenticate prompts for credentials and resolves them to an account.
func (a *App) authenticate(ctx context.Context) (*models.Account, error) {

	login, err := GetSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return nil, err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	return a.accounts.Authenticate(ctx, login, string(pw))
}

func (a *App) login(ctx context.Context) error {

	acc, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	sess, err := a.accounts.CreateSession(ctx, acc.ID, "local", "tenantdb-cli")
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Session token: %s\n", sess.Token)
	fmt.Fprintf(a.out, "Expires at: %s\n", sess.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *App) whoami(ctx context.Context) error {

	token, err := GetSimpleText(a.reader, "Session token", a.out)
	if err != nil {
		return err
	}

	acc, err := a.accounts.AccountBySessionToken(ctx, token)
	if err != nil {
		return err
	}

	st, err := a.accounts.UserStats(ctx, acc.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account: %s <%s> (id=%d)\n", acc.Username, acc.Email, acc.ID)
	fmt.Fprintf(a.out, "Entries: %d (%d bytes), live sessions: %d\n", st.EntryCount, st.EntryBytes, st.LiveSessions)
	return nil
}
