package main

import (
	"context"
	"time"

	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, fullName, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	fullName = core.CleanString(fullName)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Email:     email,
			FullName:  fullName,
			Role:      user.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if isAdmin {
			usr.Role = user.RoleSuperAdmin
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.FullName = fullName
	if isAdmin {
		usr.Role = user.RoleSuperAdmin
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
