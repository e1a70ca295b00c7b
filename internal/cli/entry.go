package cli

import (
	"context"
	"fmt"
)

func (a *App) addEntry(ctx context.Context) error {

	acc, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}

	body, err := GetMultiline(a.reader, "Body", a.out)
	if err != nil {
		return err
	}

	e, err := a.entries.Add(ctx, acc.ID, title, body)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Entry %d created\n", e.ID)
	return nil
}

func (a *App) listEntries(ctx context.Context) error {

	acc, err := a.authenticate(ctx)
	if err != nil {
		return err
	}

	list, err := a.entries.List(ctx, acc.ID)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}

	for _, e := range list {
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Title)
	}
	return nil
}
