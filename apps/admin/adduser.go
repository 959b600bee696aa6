package main

import "context"

// addUser updates or creates an account.
func (cli *commandLine) addUser(uname, name, pwd string, isAdmin bool) error {
	_, err := cli.usrSvc.SaveAccount(context.Background(), uname, name, pwd, isAdmin)
	return err
}
