package main

import (
	"context"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/user"
)

// addUser updates or creates a user.User, along with its learner profile.
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	var found bool
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	for _, lookup := range []string{uname, email} {
		if lookup == "" {
			continue
		}
		if usr, err = cli.usrRepo.GetUserByUsernameOrEmail(ctx, lookup); err == nil {
			found = true
			break
		} else if err != user.ErrNotFound {
			return err
		}
	}
	if !found {
		usr = user.User{
			Name:     name,
			Username: uname,
			Email:    email,
		}
	}
	if name != "" {
		usr.Name = name
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	} else if len(usr.Roles) == 0 {
		usr.Roles = []string{user.RoleStudent}
	}
	usr.IsActive = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if found {
		usr, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		usr, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	if err != nil {
		return err
	}

	_, err = cli.progressSvc.EnsureProfile(ctx, usr.ID, usr.Name)
	return err
}
