package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) login(uname, pwd string) error {
	s, err := cli.svc.Login(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", describe(s.Username, s.IsStaff()))
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.svc.Logout(context.Background()); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (cli *commandLine) whoami() error {
	s, err := cli.svc.Session(context.Background())
	if err != nil {
		return err
	}
	if !s.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Println(describe(s.Username, s.IsStaff()))
	return nil
}

func describe(username string, staff bool) string {
	if staff {
		return username + " (staff)"
	}
	return username + " (parent)"
}
