package system

import (
	"context"
	"errors"

	"github.com/julianstephens/keepstreak/internal/cli"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	result, err := ctx.Service.Check(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}

	ctx.Println(result.FormatReport())
	if result.HasConflicts() {
		return errors.New("validation found conflicts")
	}
	return nil
}
