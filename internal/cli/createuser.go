package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tenantdb/internal/common"
)

func (a *App) createUser(ctx context.Context) error {

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	fullName, err := GetSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	acc, err := a.accounts.CreateUser(ctx, username, email, string(pw), fullName)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created: id=%d public_id=%s\n", acc.ID, acc.PublicID)
	return nil
}
