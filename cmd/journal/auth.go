package main

import (
	"errors"
	"fmt"
	"os"

	"trading-journal-go/internal/auth"

	"github.com/spf13/cobra"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.email, "email", "e", "", "account email (required)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "account password (default $JOURNAL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

func (f *credentialFlags) secret() (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if p := os.Getenv("JOURNAL_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("a password is required, pass --password or set JOURNAL_PASSWORD")
}

func newRegisterCmd(c *cli) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := creds.secret()
			if err != nil {
				return err
			}
			session, err := c.app.Auth.SignUp(cmd.Context(), creds.email, password)
			if errors.Is(err, auth.ErrConfirmationPending) {
				fmt.Fprintln(c.out, "Account created. Confirm your email, then run \"journal login\".")
				return nil
			}
			if err != nil {
				return err
			}
			if err := auth.SaveSession(c.sessionFile, session); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Registered and signed in as %s\n", session.User.Email)
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLoginCmd(c *cli) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := creds.secret()
			if err != nil {
				return err
			}
			session, err := c.app.Auth.SignIn(cmd.Context(), creds.email, password)
			if err != nil {
				return err
			}
			if err := auth.SaveSession(c.sessionFile, session); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Signed in as %s\n", session.User.Email)
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := auth.LoadSession(c.sessionFile)
			if errors.Is(err, auth.ErrNotAuthenticated) {
				fmt.Fprintln(c.out, "Not signed in.")
				return nil
			}
			if err != nil {
				return err
			}
			if err := c.app.Auth.SignOut(cmd.Context(), saved); err != nil {
				return err
			}
			if err := auth.ClearSession(c.sessionFile); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out.")
			return nil
		},
	}
}
